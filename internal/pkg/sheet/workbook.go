package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var ErrNoWorksheet = errors.New("workbook has no worksheet")

// Decode reads the first worksheet of an xlsx workbook. The first non-empty line
// is the header row; every following non-empty line becomes a Row whose entries
// keep column order. Numeric cells are typed as numbers so date serials and
// fractions of a day reach the coercers untouched.
func Decode(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoWorksheet
	}

	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", sheetName, err)
	}

	headerIdx := -1
	for i, line := range raw {
		if !blankLine(line) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, nil
	}

	headers := make([]string, len(raw[headerIdx]))
	for i, h := range raw[headerIdx] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(raw)-headerIdx-1)
	for i := headerIdx + 1; i < len(raw); i++ {
		line := raw[i]
		if blankLine(line) {
			continue
		}
		row := make(Row, 0, len(headers))
		for col, header := range headers {
			if header == "" {
				continue
			}
			var value string
			if col < len(line) {
				value = line[col]
			}
			row = append(row, Entry{Header: header, Value: typedCell(f, sheetName, col+1, i+1, value)})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DecodeBytes is Decode over an in-memory upload.
func DecodeBytes(data []byte) ([]Row, error) {
	return Decode(bytes.NewReader(data))
}

// Write builds a single-sheet workbook with a header row followed by data rows.
func Write(sheetName string, headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		line := values
		if err := f.SetSheetRow(sheetName, cell, &line); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func typedCell(f *excelize.File, sheetName string, col, line int, value string) Cell {
	if strings.TrimSpace(value) == "" {
		return Cell{}
	}

	cellType := excelize.CellTypeUnset
	if name, err := excelize.CoordinatesToCellName(col, line); err == nil {
		if t, err := f.GetCellType(sheetName, name); err == nil {
			cellType = t
		}
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool:
		return Text(value)
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, value); err == nil {
				return Date(t)
			}
		}
		return Text(value)
	}

	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return Number(n)
	}
	return Text(value)
}

func blankLine(line []string) bool {
	for _, v := range line {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
