package web

import (
	"log/slog"
	"net/http"
)

//go:generate templ generate -f index.templ

// queryParams documents the POST /api/explode query string.
var queryParams = [][2]string{
	{"column", "column to explode"},
	{"fields", "comma separated field names"},
	{"prefix", "prefix of the exploded column names"},
	{"overwrite", "reuse existing columns with the same name"},
	{"expand", "fail unless every non-empty value is a list"},
	{"allow_month_or_day_zero", "accept dates with month or day 00"},
	{"repair_month_or_day_zero", "rewrite month or day 00 to 01"},
	{"allow_lax_strings", "skip the escaped quote check in strings"},
	{"allow_lax_lq_strings", "skip the escaped quote check in language strings"},
	{"allow_language_suffixes", "accept 'text'@en-gb style suffixes"},
	{"escape_list_separators", "never split cells into lists"},
	{"skip_comments", "drop input lines starting with #"},
	{"fill_short_rows", "pad rows with fewer cells than the header"},
}

// handleIndex renders the usage page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexPage(s.cfg.Explode.Column, s.cfg.Explode.Prefix).Render(r.Context(), w); err != nil {
		slog.Error("template render error", "error", err)
	}
}
