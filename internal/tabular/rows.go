// Package tabular turns uploaded CSV and Excel files into header-keyed rows.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/DevangRnd/fota-backend/internal/fota"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupported is returned for file types that are neither CSV nor a workbook.
var ErrUnsupported = errors.New("unsupported file type")

// ReadRows parses r according to the extension of filename. The first row is
// the header; blank rows are skipped and short rows read as empty cells.
func ReadRows(filename string, r io.Reader) ([]fota.RawRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(r)
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return readWorkbook(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(filename))
	}
}

func readCSV(r io.Reader) ([]fota.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return toRows(records), nil
}

func readWorkbook(r io.Reader) ([]fota.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return toRows(records), nil
}

func toRows(records [][]string) []fota.RawRow {
	if len(records) == 0 {
		return []fota.RawRow{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		// Excel exports often carry a UTF-8 BOM on the first header cell.
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]fota.RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make(fota.RawRow, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
