// Package csvio reads product import files and writes product exports.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"go-inventory-api/internal/model"
)

// Columns is the fixed export column order.
var Columns = []string{"id", "name", "unit", "category", "brand", "stock", "status", "image"}

// Row is one import record keyed by header name.
type Row map[string]string

// Get returns the named cell or "" when the column is missing.
func (r Row) Get(column string) string {
	return r[column]
}

// WriteProducts writes the header and one line per product, separated by
// "\n" with no trailing newline. A value is quoted only when it contains a
// comma; embedded newlines are written as is.
func WriteProducts(w io.Writer, products []model.Product) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Columns, ",")); err != nil {
		return err
	}

	for _, p := range products {
		fields := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			escape(p.Name),
			escape(p.Unit),
			escape(p.Category),
			escape(p.Brand),
			strconv.Itoa(p.Stock),
			escape(p.Status),
			escape(p.Image),
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		if _, err := bw.WriteString(strings.Join(fields, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func escape(v string) string {
	if strings.Contains(v, ",") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

// ReadRows parses a CSV stream whose first record is the header. Cells are
// returned untrimmed; an empty stream yields no rows.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(Row, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
