package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/JonMunkholm/explode/internal/core"
	"github.com/JonMunkholm/explode/internal/tsv"
)

// Run explodes o.InputPath into o.OutputPath. Diagnostics go to errW.
// Failures are returned as *ExitError carrying the exit code.
func Run(ctx context.Context, o *Options, errW io.Writer) (*core.Result, error) {
	if o.ShowOptions {
		if err := ShowOptions(errW, o); err != nil {
			return nil, err
		}
	}

	p := &core.Pipeline{
		Request:    o.Request,
		Options:    o.Value,
		OpenReader: tsv.FileReader(o.InputPath, o.Reader),
		OpenWriter: tsv.FileWriter(o.OutputPath),
		DumpValues: o.VeryVerbose,
	}

	res, err := p.Run(ctx)
	if err != nil {
		code := ExitFailure
		if core.IsConfigError(err) {
			code = ExitUsage
		}
		return res, &ExitError{
			Code:    code,
			Message: fmt.Sprintf("%v\n%s", err, core.FormatUserError(err)),
			Err:     err,
		}
	}

	if o.Verbose {
		if err := WriteSummary(errW, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	return t
}

func render(w io.Writer, t table.Writer) error {
	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}

// ShowOptions prints the effective options as a table.
func ShowOptions(w io.Writer, o *Options) error {
	t := newTable()
	t.AppendHeader(table.Row{"option", "value"})
	t.AppendRows([]table.Row{
		{"input_file", o.InputPath},
		{"output_file", o.OutputPath},
		{"column", o.Request.Column},
		{"fields", strings.Join(o.Request.Fields, " ")},
		{"prefix", o.Request.Prefix},
		{"overwrite", o.Request.Overwrite},
		{"expand", o.Request.ExpandList},
	})
	t.AppendSeparator()

	v := o.Value
	t.AppendRows([]table.Row{
		{"minimum_valid_year", v.MinimumValidYear},
		{"maximum_valid_year", v.MaximumValidYear},
		{"minimum_valid_lat", v.MinimumValidLat},
		{"maximum_valid_lat", v.MaximumValidLat},
		{"minimum_valid_lon", v.MinimumValidLon},
		{"maximum_valid_lon", v.MaximumValidLon},
		{"allow_month_or_day_zero", v.AllowMonthOrDayZero},
		{"repair_month_or_day_zero", v.RepairMonthOrDayZero},
		{"allow_lax_strings", v.AllowLaxStrings},
		{"allow_lax_lq_strings", v.AllowLaxLQStrings},
		{"allow_language_suffixes", v.AllowLanguageSuffixes},
		{"escape_list_separators", v.EscapeListSeparators},
		{"additional_language_codes", strings.Join(v.AdditionalLanguageCodes, " ")},
	})
	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"skip_comments", o.Reader.SkipComments},
		{"fill_short_rows", o.Reader.FillShortRows},
	})
	return render(w, t)
}

// WriteSummary prints the run statistics as a table.
func WriteSummary(w io.Writer, res *core.Result) error {
	t := newTable()
	t.AppendHeader(table.Row{"run", res.RunID})
	t.AppendRows([]table.Row{
		{"rows read", strconv.Itoa(res.RowsRead)},
		{"rows written", strconv.Itoa(res.RowsWritten)},
		{"invalid rows", strconv.Itoa(res.InvalidRows)},
		{"lists exploded", strconv.Itoa(res.ListsExploded)},
		{"columns", strconv.Itoa(len(res.Columns))},
		{"duration", res.Duration.String()},
	})
	return render(w, t)
}
