package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// ByteOrderMark prefixes Excel-compatible CSV so spreadsheet tools detect UTF-8.
const ByteOrderMark = "\ufeff"

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Records flattens the dataset rows in header order. Missing cells become "".
func (d Dataset) Records() [][]string {
	records := make([][]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		record := make([]string, len(d.Headers))
		for i, header := range d.Headers {
			record[i] = row[header]
		}
		records = append(records, record)
	}
	return records
}

// CSVExporter renders Dataset records into CSV bytes. Every field, headers
// included, is quoted and embedded quotes are doubled.
type CSVExporter struct {
	withBOM bool
}

// NewCSVExporter builds a plain CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// NewExcelExporter builds a CSV exporter whose output starts with a UTF-8 BOM.
func NewExcelExporter() *CSVExporter {
	return &CSVExporter{withBOM: true}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	if e.withBOM {
		buf.WriteString(ByteOrderMark)
	}
	writeQuotedLine(buf, data.Headers)
	for _, record := range data.Records() {
		writeQuotedLine(buf, record)
	}
	return buf.Bytes(), nil
}

func writeQuotedLine(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

// ParseCSV reads CSV produced by either exporter back into a dataset. A leading
// BOM is ignored and rows are keyed by the header line.
func ParseCSV(data []byte) (Dataset, error) {
	data = bytes.TrimPrefix(data, []byte(ByteOrderMark))
	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return Dataset{}, fmt.Errorf("csv has no header line")
	}
	dataset := Dataset{Headers: records[0], Rows: make([]map[string]string, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make(map[string]string, len(dataset.Headers))
		for i, header := range dataset.Headers {
			if i < len(record) {
				row[header] = record[i]
			}
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset, nil
}
