// Package fetcher reads the tabular inputs of the assignment pipeline: CSV
// files that may arrive as UTF-8 (with or without BOM), CP949, or EUC-KR.
package fetcher

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed CSV file: a header row plus data rows. Field lookup is by
// column name via Col.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// ReadTable reads a CSV file with encoding fallback and returns its rows.
// The first row is taken as the header.
func ReadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read %s", path)
	}

	decoded, err := decodeSmart(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: decode %s", path)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("fetcher: %s is empty", path)
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}

	return &Table{Header: header, Rows: records[1:], index: index}, nil
}

// decodeSmart converts raw CSV bytes to UTF-8. A UTF-8 BOM is stripped; bytes
// that are not valid UTF-8 are decoded as EUC-KR, which also covers CP949
// as far as KMA and SGIS exports use it.
func decodeSmart(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), korean.EUCKR.NewDecoder()))
	if err != nil {
		return nil, eris.Wrap(err, "euc-kr decode")
	}
	return decoded, nil
}

// Col returns the column index for name, or -1 when the header lacks it.
func (t *Table) Col(name string) int {
	i, ok := t.index[name]
	if !ok {
		return -1
	}
	return i
}

// Field returns the trimmed value of the named column in row, or "" when the
// column is absent or the row is short.
func (t *Table) Field(row []string, name string) string {
	i := t.Col(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Require validates that every named column is present, reporting all missing
// columns in one error. A schema mismatch is fatal to the run: downstream
// logic has no degraded mode without these fields.
func (t *Table) Require(table string, cols ...string) error {
	var missing []string
	for _, c := range cols {
		if t.Col(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return eris.Errorf("fetcher: %s missing required columns: %s", table, strings.Join(missing, ", "))
	}
	return nil
}
