package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/explode/internal/config"
	"github.com/JonMunkholm/explode/internal/core"
	"github.com/JonMunkholm/explode/internal/value"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func parse(t *testing.T, args ...string) (*Options, bool, error) {
	t.Helper()
	var out bytes.Buffer
	return Parse(args, &out, loadConfig(t))
}

// ---- Parse Tests ----

func TestParse_Defaults(t *testing.T) {
	o, exit, err := parse(t)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "-", o.InputPath)
	assert.Equal(t, "-", o.OutputPath)
	assert.Equal(t, "node2", o.Request.Column)
	assert.Equal(t, "node2;", o.Request.Prefix)
	assert.Equal(t, value.FieldNames, o.Request.Fields)
	assert.False(t, o.Request.Overwrite)
	assert.False(t, o.Request.ExpandList)
	assert.True(t, o.Value.AllowLanguageSuffixes)
	assert.True(t, o.Reader.SkipComments)
	assert.Equal(t, "warn", o.LogLevel)
}

func TestParse_Flags(t *testing.T) {
	o, _, err := parse(t,
		"--column", "node1",
		"--fields", "symbol, text",
		"--prefix", "x-",
		"--overwrite",
		"--expand",
		"-o", "out.tsv",
		"--additional-language-codes", "zz",
		"--no-fill-short-rows",
		"in.tsv",
	)
	require.NoError(t, err)

	assert.Equal(t, "in.tsv", o.InputPath)
	assert.Equal(t, "out.tsv", o.OutputPath)
	assert.Equal(t, core.Request{
		Column:     "node1",
		Fields:     []string{"symbol", "text"},
		Prefix:     "x-",
		Overwrite:  true,
		ExpandList: true,
	}, o.Request)
	assert.Equal(t, []string{"zz"}, o.Value.AdditionalLanguageCodes)
	assert.False(t, o.Reader.FillShortRows)
}

func TestParse_EnvDefaults(t *testing.T) {
	t.Setenv("EXPLODE_COLUMN", "label")
	t.Setenv("EXPLODE_FIELDS", "data_type")
	t.Setenv("VALUE_ALLOW_LAX_STRINGS", "true")

	o, _, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, "label", o.Request.Column)
	assert.Equal(t, []string{"data_type"}, o.Request.Fields)
	assert.True(t, o.Value.AllowLaxStrings)

	o, _, err = parse(t, "--disallow-lax-strings")
	require.NoError(t, err)
	assert.False(t, o.Value.AllowLaxStrings)
}

func TestParse_FlagPairs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		get  func(*Options) bool
		want bool
	}{
		{"allow", []string{"--allow-lax-lq-strings"}, func(o *Options) bool { return o.Value.AllowLaxLQStrings }, true},
		{"last wins", []string{"--allow-lax-strings", "--disallow-lax-strings"}, func(o *Options) bool { return o.Value.AllowLaxStrings }, false},
		{"disallow default true", []string{"--disallow-language-suffixes"}, func(o *Options) bool { return o.Value.AllowLanguageSuffixes }, false},
		{"explicit value", []string{"--disallow-language-suffixes=false"}, func(o *Options) bool { return o.Value.AllowLanguageSuffixes }, true},
		{"repair", []string{"--repair-month-or-day-zero"}, func(o *Options) bool { return o.Value.RepairMonthOrDayZero }, true},
		{"escape off", []string{"--escape-list-separators", "--no-escape-list-separators"}, func(o *Options) bool { return o.Value.EscapeListSeparators }, false},
		{"keep comments", []string{"--keep-comments"}, func(o *Options) bool { return o.Reader.SkipComments }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _, err := parse(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.get(o))
		})
	}
}

func TestParse_Verbosity(t *testing.T) {
	o, _, err := parse(t, "--verbose")
	require.NoError(t, err)
	assert.Equal(t, "info", o.LogLevel)
	assert.True(t, o.Verbose)

	o, _, err = parse(t, "--very-verbose")
	require.NoError(t, err)
	assert.Equal(t, "debug", o.LogLevel)
	assert.True(t, o.Verbose)
	assert.True(t, o.VeryVerbose)
}

func TestParse_Help(t *testing.T) {
	var out bytes.Buffer
	o, exit, err := Parse([]string{"-h"}, &out, loadConfig(t))
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, o)
	assert.Contains(t, out.String(), "INPUT_FILE")
	assert.Contains(t, out.String(), "language_suffix")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--colour"}},
		{"too many arguments", []string{"a.tsv", "b.tsv"}},
		{"input twice", []string{"-i", "a.tsv", "b.tsv"}},
		{"bad log format", []string{"--log-format", "xml"}},
		{"bad log level", []string{"--log-level", "loud"}},
		{"inverted years", []string{"--minimum-valid-year", "2200"}},
		{"bad latitude", []string{"--maximum-valid-lat", "100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parse(t, tt.args...)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, ExitUsage, exitErr.Code)
		})
	}
}

// ---- Run Tests ----

func writeInput(t *testing.T, content string) (in, out string) {
	t.Helper()
	dir := t.TempDir()
	in = filepath.Join(dir, "in.tsv")
	out = filepath.Join(dir, "out.tsv")
	require.NoError(t, os.WriteFile(in, []byte(content), 0o644))
	return in, out
}

func TestRun(t *testing.T) {
	in, out := writeInput(t, "node1\tlabel\tnode2\nQ1\tP6\tQ2|Q3\n")
	o, _, err := parse(t, "--fields", "symbol", "--prefix", "x-", "-o", out, "--verbose", "--show-options", in)
	require.NoError(t, err)

	var errW bytes.Buffer
	res, err := Run(context.Background(), o, &errW)
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsWritten)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "node1\tlabel\tnode2\tx-symbol\nQ1\tP6\tQ2\tQ2\nQ1\tP6\tQ3\tQ3\n", string(got))

	assert.Contains(t, errW.String(), "allow_lax_strings")
	assert.Contains(t, errW.String(), "rows written")
}

func TestRun_ConfigErrorExitsWithUsage(t *testing.T) {
	in, out := writeInput(t, "node1\tnode2\n")
	o, _, err := parse(t, "--column", "node9", "-o", out, in)
	require.NoError(t, err)

	_, err = Run(context.Background(), o, &bytes.Buffer{})
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitUsage, exitErr.Code)
	assert.Contains(t, exitErr.Message, "CFG002")
	assert.True(t, errors.Is(err, core.ErrColumnNotFound))
}

func TestRun_ExpandFailure(t *testing.T) {
	in, out := writeInput(t, "node1\tnode2\nQ1\tQ2|Q3\nQ4\tQ5\n")
	o, _, err := parse(t, "--fields", "symbol", "--expand", "-o", out, in)
	require.NoError(t, err)

	_, err = Run(context.Background(), o, &bytes.Buffer{})
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitFailure, exitErr.Code)
	assert.Contains(t, exitErr.Message, "ROW001")
}

func TestRun_MissingInput(t *testing.T) {
	o, _, err := parse(t, "-o", filepath.Join(t.TempDir(), "out.tsv"), filepath.Join(t.TempDir(), "nope.tsv"))
	require.NoError(t, err)

	_, err = Run(context.Background(), o, &bytes.Buffer{})
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitFailure, exitErr.Code)
	assert.Contains(t, exitErr.Message, "FILE001")
}
