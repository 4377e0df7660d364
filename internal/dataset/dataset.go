// Package dataset reads columns of numbers from delimited text files.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/scheming/internal/compression"
)

// Whitespace is the Separator value for files split on runs of spaces and tabs.
const Whitespace rune = 0

// Dataset holds numeric data column by column.
type Dataset struct {
	// Path is the file the data came from.
	Path string
	// Columns names each column, from the header row or "column N".
	Columns []string
	// Values holds one slice per column, all the same length.
	Values [][]float64
	// Separator is the field separator that was used.
	Separator rune
	// Compression is the compression the file was stored with.
	Compression compression.Kind
}

// Rows returns the number of data rows.
func (d *Dataset) Rows() int {
	if len(d.Values) == 0 {
		return 0
	}
	return len(d.Values[0])
}

// Column returns the values of the named column.
func (d *Dataset) Column(name string) ([]float64, bool) {
	for i, c := range d.Columns {
		if c == name {
			return d.Values[i], true
		}
	}
	return nil, false
}

// SeparatorFor picks the separator from a file name, ignoring any
// compression extension: comma for .csv, tab for .tsv and whitespace otherwise.
func SeparatorFor(name string) rune {
	switch strings.ToLower(filepath.Ext(compression.TrimExt(name))) {
	case ".csv":
		return ','
	case ".tsv", ".tab":
		return '\t'
	default:
		return Whitespace
	}
}

// Loader reads datasets.
type Loader struct {
	// Separator overrides detection from the file name when non-nil.
	Separator *rune
	// MaxBytes caps the decompressed size. Zero uses the compression default.
	MaxBytes int64
	Logger   hclog.Logger
}

// Load reads path with default settings.
func Load(path string) (*Dataset, error) {
	return (&Loader{}).Load(path)
}

// Load reads path, decompressing it if needed.
func (l *Loader) Load(path string) (*Dataset, error) {
	logger := l.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	rc, kind, err := compression.Open(path, l.MaxBytes)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sep := SeparatorFor(path)
	if l.Separator != nil {
		sep = *l.Separator
	}

	d, err := Parse(rc, sep)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	d.Path = path
	d.Compression = kind

	logger.Debug("loaded dataset", "path", path, "compression", kind,
		"columns", len(d.Columns), "rows", d.Rows())
	return d, nil
}

// Parse reads numeric columns from r. Blank lines and lines starting with '#'
// are skipped. A first row that is not entirely numeric is taken as the header.
func Parse(r io.Reader, sep rune) (*Dataset, error) {
	records, err := readRecords(r, sep)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("no data rows")
	}

	d := &Dataset{Separator: sep}
	width := len(records[0])

	if _, ok := parseRow(records[0]); ok {
		d.Columns = make([]string, width)
		for i := range d.Columns {
			d.Columns[i] = fmt.Sprintf("column %d", i+1)
		}
	} else {
		d.Columns = make([]string, width)
		for i, name := range records[0] {
			d.Columns[i] = strings.TrimSpace(name)
		}
		records = records[1:]
		if len(records) == 0 {
			return nil, errors.New("header row but no data rows")
		}
	}

	d.Values = make([][]float64, width)
	for row, rec := range records {
		if len(rec) != width {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", row+1, len(rec), width)
		}
		vals, ok := parseRow(rec)
		if !ok {
			return nil, fmt.Errorf("row %d is not numeric: %q", row+1, rec)
		}
		for i, v := range vals {
			d.Values[i] = append(d.Values[i], v)
		}
	}
	return d, nil
}

func readRecords(r io.Reader, sep rune) ([][]string, error) {
	if sep == Whitespace {
		var records [][]string
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			records = append(records, strings.Fields(line))
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read data: %w", err)
		}
		return records, nil
	}

	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return records, nil
}

func parseRow(rec []string) ([]float64, bool) {
	vals := make([]float64, len(rec))
	for i, field := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

// Write writes d as delimited text with a "#"-prefixed header line, which
// gnuplot skips as a comment. A Whitespace separator is written as tabs.
func (d *Dataset) Write(w io.Writer, sep rune) error {
	if sep == Whitespace {
		sep = '\t'
	}
	cw := csv.NewWriter(w)
	cw.Comma = sep

	header := slices.Clone(d.Columns)
	if len(header) > 0 {
		header[0] = "# " + header[0]
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rec := make([]string, len(d.Values))
	for row := range d.Rows() {
		for i, col := range d.Values {
			rec[i] = strconv.FormatFloat(col[row], 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	return nil
}
