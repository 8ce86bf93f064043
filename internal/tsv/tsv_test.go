package tsv

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/explode/internal/core"
)

func collect(t *testing.T, r *Reader) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for row, err := range r.Rows() {
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ---- Reader Tests ----

func TestReader(t *testing.T) {
	input := "node1\tlabel\tnode2\r\n" +
		"Q1\tP6\tQ2|Q3\r\n" +
		"\n" +
		"# a comment\n" +
		"Q4\tP6\n" +
		"Q5\tP6\t\"a\tb\"" // last line without newline, too wide

	r, err := NewReader(strings.NewReader(input), DefaultReaderOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"node1", "label", "node2"}, r.ColumnNames())
	assert.Equal(t, 3, r.ColumnCount())

	rows, err := collect(t, r)
	assert.Equal(t, [][]string{
		{"Q1", "P6", "Q2|Q3"},
		{"Q4", "P6", ""},
	}, rows)

	var le *LineError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 6, le.Line)
	assert.ErrorIs(t, err, ErrTooManyCells)
	assert.Positive(t, r.BytesRead())
}

func TestReader_Options(t *testing.T) {
	input := "a\tb\n#x\ty\n1\n"

	t.Run("comments kept", func(t *testing.T) {
		r, err := NewReader(strings.NewReader(input), ReaderOptions{FillShortRows: true})
		require.NoError(t, err)
		rows, err := collect(t, r)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"#x", "y"}, {"1", ""}}, rows)
	})

	t.Run("short rows rejected", func(t *testing.T) {
		r, err := NewReader(strings.NewReader(input), ReaderOptions{SkipComments: true})
		require.NoError(t, err)
		_, err = collect(t, r)
		assert.ErrorIs(t, err, ErrTooFewCells)
	})
}

func TestReader_NoHeader(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), DefaultReaderOptions())
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = NewReader(strings.NewReader("\nfoo\n"), DefaultReaderOptions())
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReader_BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("node2\nQ1\n")...)
	r, err := NewReader(bytes.NewReader(input), DefaultReaderOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"node2"}, r.ColumnNames())
}

func TestReader_RowsOnce(t *testing.T) {
	r, err := NewReader(strings.NewReader("a\n1\n"), DefaultReaderOptions())
	require.NoError(t, err)
	_, err = collect(t, r)
	require.NoError(t, err)
	_, err = collect(t, r)
	assert.Error(t, err)
}

// ---- Writer Tests ----

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, []string{"a", "b", "c"})
	require.NoError(t, err)

	require.NoError(t, w.Write([]string{"1", "2", "3"}))
	require.NoError(t, w.Write([]string{"4"}))
	assert.ErrorIs(t, w.Write([]string{"5", "6", "7", "8"}), ErrTooManyCells)
	require.NoError(t, w.Close())

	assert.Equal(t, "a\tb\tc\n1\t2\t3\n4\t\t\n", buf.String())
	assert.Equal(t, 2, w.Rows())
}

func TestWriter_EscapesControlCharacters(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, []string{"a", "b"})
	require.NoError(t, err)

	require.NoError(t, w.Write([]string{"x\ty", "line1\nline2\r"}))
	require.NoError(t, w.Close())

	assert.Equal(t, "a\tb\n"+`x\ty`+"\t"+`line1\nline2\r`+"\n", buf.String())
}

// ---- File Tests ----

func TestOpenCreate_Gzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.tsv.gz")

	w, err := Create(path, []string{"node1", "node2"})
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"Q1", "Q2|Q3"}))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "node1\tnode2\nQ1\tQ2|Q3\n", string(raw))

	r, err := Open(path, DefaultReaderOptions())
	require.NoError(t, err)
	rows, err := collect(t, r)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Q1", "Q2|Q3"}}, rows)
	require.NoError(t, r.Close())
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("", DefaultReaderOptions())
	assert.ErrorIs(t, err, ErrEmptyFilename)

	_, err = Open(filepath.Join(t.TempDir(), "missing.tsv"), DefaultReaderOptions())
	assert.True(t, errors.Is(err, os.ErrNotExist))

	plain := filepath.Join(t.TempDir(), "plain.tsv.gz")
	require.NoError(t, os.WriteFile(plain, []byte("not gzip\n"), 0o644))
	_, err = Open(plain, DefaultReaderOptions())
	require.Error(t, err)
	assert.Equal(t, "FILE003", core.MapError(err).Code)
}

// ---- Pipeline Integration Tests ----

func TestPipeline_FileToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tsv")
	out := filepath.Join(dir, "out.tsv")
	require.NoError(t, os.WriteFile(in, []byte(
		"node1\tlabel\tnode2\n"+
			"Q1\tP6\tQ2|Q3\n"+
			"Q4\tP1\t\"hi\"\n"), 0o644))

	p := &core.Pipeline{
		Request: core.Request{
			Column: "node2",
			Fields: []string{"data_type", "text", "symbol"},
			Prefix: "node2;",
		},
		OpenReader: FileReader(in, DefaultReaderOptions()),
		OpenWriter: FileWriter(out),
	}
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.RowsWritten)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"node1\tlabel\tnode2\tnode2;data_type\tnode2;text\tnode2;symbol\n"+
			"Q1\tP6\tQ2\tsymbol\t\tQ2\n"+
			"Q1\tP6\tQ3\tsymbol\t\tQ3\n"+
			"Q4\tP1\t\"hi\"\tstring\thi\t\n",
		string(got))
}

func TestPipeline_DecodedTextKeepsRowShape(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tsv")
	out := filepath.Join(dir, "out.tsv")
	require.NoError(t, os.WriteFile(in, []byte(
		"node1\tnode2\n"+
			`Q1`+"\t"+`"a\tb\nc\\d"`+"\n"), 0o644))

	p := &core.Pipeline{
		Request: core.Request{
			Column: "node2",
			Fields: []string{"text", "decoded_text"},
			Prefix: "node2;",
		},
		OpenReader: FileReader(in, DefaultReaderOptions()),
		OpenWriter: FileWriter(out),
	}
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(got), "\n"), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Len(t, strings.Split(line, "\t"), 4, "line %q", line)
	}
	assert.Equal(t, "Q1\t"+`"a\tb\nc\\d"`+"\t"+`a\tb\nc\\d`+"\t"+`a\tb\nc\\d`, lines[1])
}

func TestPipeline_RowErrorNamesInputLine(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.tsv")
	require.NoError(t, os.WriteFile(in, []byte(
		"node1\tnode2\n"+
			"Q1\tQ2|Q3\n"+
			"# note\n"+
			"\n"+
			"Q4\tQ5\n"), 0o644))

	opts := DefaultReaderOptions()
	opts.SkipComments = true
	var buf bytes.Buffer
	p := &core.Pipeline{
		Request: core.Request{
			Column:     "node2",
			Fields:     []string{"symbol"},
			Prefix:     "x-",
			ExpandList: true,
		},
		OpenReader: FileReader(in, opts),
		OpenWriter: StreamWriter(&buf, nil),
	}
	_, err := p.Run(context.Background())

	var rowErr *core.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, 5, rowErr.Line)
	assert.Contains(t, err.Error(), "row 2 (line 5)")
}

func TestPipeline_ConfigErrorLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tsv")
	out := filepath.Join(dir, "out.tsv")
	require.NoError(t, os.WriteFile(in, []byte("node1\tnode2\n"), 0o644))

	p := &core.Pipeline{
		Request:    core.Request{Column: "node9", Fields: []string{"symbol"}},
		OpenReader: FileReader(in, DefaultReaderOptions()),
		OpenWriter: FileWriter(out),
	}
	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, core.ErrColumnNotFound)

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}
