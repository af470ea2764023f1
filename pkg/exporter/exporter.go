package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atomicdeploy/arshape/pkg/atomicfile"
	"github.com/atomicdeploy/arshape/pkg/codepoint"
	"github.com/atomicdeploy/arshape/pkg/datasource"
)

// ExportFormat represents the export format type
type ExportFormat string

const (
	FormatText ExportFormat = "text"
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
)

// ParseFormat validates a format name given on the command line
func ParseFormat(name string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	case "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported format: %s (expected text, json or csv)", name)
}

// Extension returns the file extension used for the format
func (f ExportFormat) Extension() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + string(f)
}

// Record is an entry together with its shaped text
type Record struct {
	Key        string `json:"key"`
	Source     string `json:"source"`
	Shaped     string `json:"shaped"`
	Codepoints string `json:"codepoints"`
}

// keyedRecord is a Record inside a JSON object keyed by entry key
type keyedRecord struct {
	Source     string `json:"source"`
	Shaped     string `json:"shaped"`
	Codepoints string `json:"codepoints"`
}

// Exporter shapes entries and writes them out
type Exporter struct {
	converter func(string) string
}

// NewExporter creates a new exporter with optional converter function
func NewExporter(converter func(string) string) *Exporter {
	return &Exporter{
		converter: converter,
	}
}

// ConvertEntries runs the converter over every entry. Blank entries are
// passed through as they are.
func (e *Exporter) ConvertEntries(entries []datasource.Entry) []Record {
	records := make([]Record, len(entries))
	for i, entry := range entries {
		shaped := entry.Text
		if e.converter != nil && strings.TrimSpace(entry.Text) != "" {
			shaped = e.converter(entry.Text)
		}
		records[i] = Record{
			Key:        entry.Key,
			Source:     entry.Text,
			Shaped:     shaped,
			Codepoints: codepoint.Format(shaped),
		}
	}
	return records
}

// Render converts entries and encodes them in the given format
func (e *Exporter) Render(entries []datasource.Entry, format ExportFormat) ([]byte, error) {
	records := e.ConvertEntries(entries)

	switch format {
	case FormatText:
		var buf bytes.Buffer
		for _, record := range records {
			buf.WriteString(record.Shaped)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil

	case FormatJSON:
		keyed := make(map[string]keyedRecord, len(records))
		for _, record := range records {
			keyed[record.Key] = keyedRecord{
				Source:     record.Source,
				Shaped:     record.Shaped,
				Codepoints: record.Codepoints,
			}
		}
		data, err := json.MarshalIndent(keyed, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return append(data, '\n'), nil

	case FormatCSV:
		var buf bytes.Buffer
		writer := csv.NewWriter(&buf)
		if err := writer.Write([]string{"key", "source", "shaped", "codepoints"}); err != nil {
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
		for _, record := range records {
			row := []string{record.Key, record.Source, record.Shaped, record.Codepoints}
			if err := writer.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, fmt.Errorf("failed to flush CSV: %w", err)
		}
		return buf.Bytes(), nil
	}

	return nil, fmt.Errorf("unsupported format: %s", format)
}

// Export writes the converted entries to outputPath. The file is replaced
// atomically and left alone when its content would not change.
func (e *Exporter) Export(entries []datasource.Entry, format ExportFormat, outputPath string) (*atomicfile.FileInfo, error) {
	data, err := e.Render(entries, format)
	if err != nil {
		return nil, err
	}

	info, err := atomicfile.Write(outputPath, data)
	if err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}
	return info, nil
}

// ExportToString renders the converted entries as a JSON string
func (e *Exporter) ExportToString(entries []datasource.Entry) (string, error) {
	data, err := e.Render(entries, FormatJSON)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
