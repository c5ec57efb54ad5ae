// Package export serializes result tables into downloadable payloads.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/octobees/geosearch/internal/entity"
)

// Format identifies a download format.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
)

// SheetName is the only worksheet of the Excel export.
const SheetName = "Sheet1"

// MIME types and filenames of each payload.
const (
	MIMECSV   = "text/csv"
	MIMEExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEJSON  = "application/json"

	FilenameCSV   = "places_data.csv"
	FilenameExcel = "places_data.xlsx"
	FilenameJSON  = "places_data.json"
)

// Formats lists every format in download order.
var Formats = []Format{FormatCSV, FormatExcel, FormatJSON}

// Payload is a fully serialized table ready for download.
type Payload struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Payloads holds one payload per format.
type Payloads struct {
	CSV   Payload
	Excel Payload
	JSON  Payload
}

// Get returns the payload of the given format.
func (p Payloads) Get(format Format) (Payload, bool) {
	switch format {
	case FormatCSV:
		return p.CSV, true
	case FormatExcel:
		return p.Excel, true
	case FormatJSON:
		return p.JSON, true
	default:
		return Payload{}, false
	}
}

// ParseFormat accepts csv, excel (or xlsx) and json, case-insensitively.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", value)
	}
}

// Export serializes the table into the requested format.
func Export(table entity.ResultTable, format Format) (Payload, error) {
	switch format {
	case FormatCSV:
		data, err := encodeCSV(table)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Data: data, MIMEType: MIMECSV, Filename: FilenameCSV}, nil
	case FormatExcel:
		data, err := encodeExcel(table)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Data: data, MIMEType: MIMEExcel, Filename: FilenameExcel}, nil
	case FormatJSON:
		data, err := encodeJSON(table)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Data: data, MIMEType: MIMEJSON, Filename: FilenameJSON}, nil
	default:
		return Payload{}, fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportAll computes the payloads of every format.
func ExportAll(table entity.ResultTable) (Payloads, error) {
	var (
		payloads Payloads
		err      error
	)
	if payloads.CSV, err = Export(table, FormatCSV); err != nil {
		return Payloads{}, err
	}
	if payloads.Excel, err = Export(table, FormatExcel); err != nil {
		return Payloads{}, err
	}
	if payloads.JSON, err = Export(table, FormatJSON); err != nil {
		return Payloads{}, err
	}
	return payloads, nil
}

func encodeCSV(table entity.ResultTable) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(entity.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range table.Rows {
		if err := writer.Write(row.Strings()); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv records: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeExcel(table entity.ResultTable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(entity.Columns))
	for i, col := range entity.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write excel header: %w", err)
	}
	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("excel cell for row %d: %w", i, err)
		}
		values := row.Values()
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write excel row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write excel workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeJSON writes an array of objects whose keys follow the column order.
func encodeJSON(table entity.ResultTable) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('[')
	for i, row := range table.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, value := range row.Values() {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, entity.Columns[j]); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeJSONValue(buf, value); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writeJSONValue(buf *bytes.Buffer, value any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode json value: %w", err)
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
