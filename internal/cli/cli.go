package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/JonMunkholm/explode/internal/config"
	"github.com/JonMunkholm/explode/internal/core"
	"github.com/JonMunkholm/explode/internal/tsv"
	"github.com/JonMunkholm/explode/internal/value"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// Options is the fully resolved command line.
type Options struct {
	InputPath  string
	OutputPath string

	Request core.Request
	Value   *value.Options
	Reader  tsv.ReaderOptions

	ShowOptions bool
	Verbose     bool
	VeryVerbose bool

	LogLevel  string
	LogFormat string
}

// negatedBool is the "disallow" half of an allow/disallow flag pair.
type negatedBool struct{ p *bool }

func (n negatedBool) String() string {
	if n.p == nil {
		return "false"
	}
	return strconv.FormatBool(!*n.p)
}

func (n negatedBool) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*n.p = !b
	return nil
}

func (n negatedBool) IsBoolFlag() bool { return true }

func boolPair(fs *flag.FlagSet, p *bool, on, off, usage string) {
	fs.BoolVar(p, on, *p, usage)
	fs.Var(negatedBool{p}, off, "Opposite of -"+on+".")
}

// Parse processes command-line arguments on top of cfg, which carries the
// environment defaults. It returns the resolved options, a boolean
// indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer, cfg *config.Config) (*Options, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("explode", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
explode - Explode a column of typed values into one column per field.

Usage:
  explode [options] [INPUT_FILE]

Arguments:
  INPUT_FILE
    The TSV file to read. "-" (the default) reads stdin; ".gz" files are
    decompressed.

Fields:
  `+strings.Join(value.FieldNames, " ")+`

Options:
`)
		flagSet.PrintDefaults()
	}

	defaultFields := cfg.Explode.Fields
	if len(defaultFields) == 0 {
		defaultFields = value.FieldNames
	}

	inputFlag := flagSet.String("i", "", "The TSV file to read (default: first argument or stdin).")
	outputFlag := flagSet.String("o", tsv.Stdio, "The TSV file to write. \"-\" writes stdout.")
	columnFlag := flagSet.String("column", cfg.Explode.Column, "The name of the column to explode.")
	fieldsFlag := flagSet.String("fields", strings.Join(defaultFields, ","), "Comma separated names of the fields to extract.")
	prefixFlag := flagSet.String("prefix", cfg.Explode.Prefix, "The prefix for exploded column names.")
	overwrite := cfg.Explode.Overwrite
	flagSet.BoolVar(&overwrite, "overwrite", overwrite, "Allow exploded fields to overwrite existing columns.")
	expand := cfg.Explode.ExpandList
	flagSet.BoolVar(&expand, "expand", expand, "Fail unless every non-empty value to explode is a list.")

	vc := cfg.Value
	flagSet.IntVar(&vc.MinimumValidYear, "minimum-valid-year", vc.MinimumValidYear, "The minimum valid year in dates.")
	flagSet.IntVar(&vc.MaximumValidYear, "maximum-valid-year", vc.MaximumValidYear, "The maximum valid year in dates.")
	flagSet.Float64Var(&vc.MinimumValidLat, "minimum-valid-lat", vc.MinimumValidLat, "The minimum valid latitude.")
	flagSet.Float64Var(&vc.MaximumValidLat, "maximum-valid-lat", vc.MaximumValidLat, "The maximum valid latitude.")
	flagSet.Float64Var(&vc.MinimumValidLon, "minimum-valid-lon", vc.MinimumValidLon, "The minimum valid longitude.")
	flagSet.Float64Var(&vc.MaximumValidLon, "maximum-valid-lon", vc.MaximumValidLon, "The maximum valid longitude.")
	boolPair(flagSet, &vc.AllowMonthOrDayZero, "allow-month-or-day-zero", "disallow-month-or-day-zero",
		"Allow month or day zero in dates.")
	boolPair(flagSet, &vc.RepairMonthOrDayZero, "repair-month-or-day-zero", "no-repair-month-or-day-zero",
		"Repair month or day zero in dates to 01.")
	boolPair(flagSet, &vc.AllowLaxStrings, "allow-lax-strings", "disallow-lax-strings",
		"Do not require internal double quotes in strings to be escaped.")
	boolPair(flagSet, &vc.AllowLaxLQStrings, "allow-lax-lq-strings", "disallow-lax-lq-strings",
		"Do not require internal single quotes in language-qualified strings to be escaped.")
	boolPair(flagSet, &vc.AllowLanguageSuffixes, "allow-language-suffixes", "disallow-language-suffixes",
		"Allow language identifier suffixes such as -simple.")
	boolPair(flagSet, &vc.EscapeListSeparators, "escape-list-separators", "no-escape-list-separators",
		"Treat the list separator as an ordinary character.")
	langFlag := flagSet.String("additional-language-codes", strings.Join(vc.AdditionalLanguageCodes, ","),
		"Comma separated language codes accepted in addition to ISO 639.")

	ic := cfg.Input
	boolPair(flagSet, &ic.SkipComments, "skip-comments", "keep-comments", "Skip input lines starting with #.")
	boolPair(flagSet, &ic.FillShortRows, "fill-short-rows", "no-fill-short-rows", "Pad short input rows with empty cells.")

	showOptions := flagSet.Bool("show-options", false, "Print the effective options before running.")
	verbose := flagSet.Bool("verbose", false, "Print progress messages.")
	veryVerbose := flagSet.Bool("very-verbose", false, "Print progress messages and a dump of every parsed value.")
	logFormatFlag := flagSet.String("log-format", cfg.Logging.Format, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
	}
	slog.Debug("Arguments parsed successfully.")

	input := *inputFlag
	switch {
	case flagSet.NArg() > 1:
		return nil, false, &ExitError{Code: ExitUsage, Message: "too many arguments: " + strings.Join(flagSet.Args(), " ")}
	case input != "" && flagSet.NArg() == 1:
		return nil, false, &ExitError{Code: ExitUsage, Message: "input given both by -i and as an argument"}
	case input == "" && flagSet.NArg() == 1:
		input = flagSet.Arg(0)
	case input == "":
		input = tsv.Stdio
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	switch {
	case *veryVerbose:
		logLevel = "debug"
	case *verbose && logLevel != "debug":
		logLevel = "info"
	}

	vc.AdditionalLanguageCodes = splitList(*langFlag)
	opts, err := vc.Options()
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
	}

	o := &Options{
		InputPath:  input,
		OutputPath: *outputFlag,
		Request: core.Request{
			Column:     *columnFlag,
			Fields:     splitList(*fieldsFlag),
			Prefix:     *prefixFlag,
			Overwrite:  overwrite,
			ExpandList: expand,
		},
		Value:       opts,
		Reader:      ic.ReaderOptions(),
		ShowOptions: *showOptions,
		Verbose:     *verbose || *veryVerbose,
		VeryVerbose: *veryVerbose,
		LogLevel:    logLevel,
		LogFormat:   logFormat,
	}
	slog.Debug("CLI parser finished successfully.", "input", o.InputPath, "output", o.OutputPath)
	return o, false, nil
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
