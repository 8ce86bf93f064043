package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/JonMunkholm/explode/internal/core"
	"github.com/JonMunkholm/explode/internal/logging"
	"github.com/JonMunkholm/explode/internal/tsv"
	"github.com/JonMunkholm/explode/internal/value"
)

// Response headers and trailers of POST /api/explode.
const (
	HeaderRunID  = "X-Run-ID"
	TrailerRows  = "X-Explode-Rows"
	TrailerError = "X-Explode-Error"

	contentTypeTSV = "text/tab-separated-values; charset=utf-8"
)

// explodeParams is a decoded POST /api/explode query string.
type explodeParams struct {
	request core.Request
	opts    *value.Options
	reader  tsv.ReaderOptions
}

// parseExplodeQuery merges the query string over the configured defaults.
func (s *Server) parseExplodeQuery(q url.Values) (*explodeParams, error) {
	ec := s.cfg.Explode
	fields := ec.Fields
	if len(fields) == 0 {
		fields = value.FieldNames
	}
	p := &explodeParams{
		request: core.Request{
			Column:     ec.Column,
			Fields:     fields,
			Prefix:     ec.Prefix,
			Overwrite:  ec.Overwrite,
			ExpandList: ec.ExpandList,
		},
		reader: s.cfg.Input.ReaderOptions(),
	}

	if q.Has("column") {
		p.request.Column = q.Get("column")
	}
	if q.Has("fields") {
		p.request.Fields = splitParam(q.Get("fields"))
	}
	if q.Has("prefix") {
		p.request.Prefix = q.Get("prefix")
	}

	vo := *s.opts
	bools := []struct {
		name string
		dst  *bool
	}{
		{"overwrite", &p.request.Overwrite},
		{"expand", &p.request.ExpandList},
		{"allow_month_or_day_zero", &vo.AllowMonthOrDayZero},
		{"repair_month_or_day_zero", &vo.RepairMonthOrDayZero},
		{"allow_lax_strings", &vo.AllowLaxStrings},
		{"allow_lax_lq_strings", &vo.AllowLaxLQStrings},
		{"allow_language_suffixes", &vo.AllowLanguageSuffixes},
		{"escape_list_separators", &vo.EscapeListSeparators},
		{"skip_comments", &p.reader.SkipComments},
		{"fill_short_rows", &p.reader.FillShortRows},
	}
	for _, b := range bools {
		if err := queryBool(q, b.name, b.dst); err != nil {
			return nil, err
		}
	}

	opts, err := value.NewOptions(vo)
	if err != nil {
		return nil, err
	}
	p.opts = opts
	return p, nil
}

// handleExplode streams the exploded form of the uploaded TSV body.
//
// Errors found before the header is written get a normal error response.
// Later errors truncate the body and are reported in the X-Explode-Error
// trailer, so clients must check it.
func (s *Server) handleExplode(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseExplodeQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if err := s.runs.Acquire(r.Context()); err != nil {
		if errors.Is(err, core.ErrTooManyRuns) {
			w.Header().Set("Retry-After", "30")
		}
		respondError(w, r, err, statusFor(err))
		return
	}
	defer s.runs.Release()

	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)
	defer body.Close()

	var src io.Reader = body
	if strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = tsv.ErrNoHeader
			}
			respondError(w, r, fmt.Errorf("decode request body: %w", err), http.StatusBadRequest)
			return
		}
		defer gz.Close()
		src = gz
	}

	started := false
	p := &core.Pipeline{
		Request:    params.request,
		Options:    params.opts,
		OpenReader: tsv.StreamReader(src, params.reader),
		OpenWriter: tsv.StreamWriter(w, func(ctx context.Context, _ []string) {
			h := w.Header()
			h.Set("Content-Type", contentTypeTSV)
			h.Set(HeaderRunID, logging.RunID(ctx))
			h.Set("Trailer", TrailerRows+", "+TrailerError)
			w.WriteHeader(http.StatusOK)
			started = true
		}),
	}

	res, err := p.Run(r.Context())
	if !started {
		if err != nil {
			respondError(w, r, err, statusFor(err))
		}
		return
	}

	rows := 0
	if res != nil {
		rows = res.RowsWritten
	}
	w.Header().Set(TrailerRows, strconv.Itoa(rows))
	if err != nil {
		msg := core.MapError(err)
		logging.FromContext(r.Context()).Error("explode failed mid-stream",
			"error", err,
			"code", msg.Code,
			"rows_written", rows,
		)
		w.Header().Set(TrailerError, msg.Code+": "+msg.Message)
	}
}

// fieldsResponse lists what a client may request.
type fieldsResponse struct {
	Fields []string `json:"fields"`
	Kinds  []string `json:"kinds"`
}

// handleFields returns the recognized field names and value kinds.
func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	kinds := make([]string, 0, int(value.KindLocation)+1)
	for k := value.KindInvalid; k <= value.KindLocation; k++ {
		kinds = append(kinds, k.String())
	}
	writeJSON(w, fieldsResponse{Fields: value.FieldNames, Kinds: kinds})
}

// healthResponse reports liveness and run slot usage.
type healthResponse struct {
	Status string                `json:"status"`
	Runs   core.RunLimiterStatus `json:"runs"`
}

// handleHealth returns a liveness response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{Status: "ok", Runs: s.runs.Status()})
}

// queryBool sets *dst from q[name] if present.
func queryBool(q url.Values, name string, dst *bool) error {
	if !q.Has(name) {
		return nil
	}
	raw := q.Get(name)
	if raw == "" {
		*dst = true // bare ?expand
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrBadParameter, name, raw)
	}
	*dst = b
	return nil
}

// splitParam splits a comma separated parameter, dropping blanks.
func splitParam(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
