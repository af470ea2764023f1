package datasource

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupportedFormat is returned for files whose extension has no reader.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// Entry is one piece of text read from a source, with a key that names it
// in exports.
type Entry struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// DataSource represents a file holding text to be shaped
type DataSource interface {
	// GetEntries reads the file and returns its entries in file order
	GetEntries() ([]Entry, error)
	// GetPath returns the file path of the data source
	GetPath() string
	// Close closes the data source
	Close() error
}

// Option configures a data source.
type Option func(*config)

type config struct {
	column string
}

// WithColumn selects a CSV column by its header name. Without it, CSV files
// have no header row and the first column is used.
func WithColumn(name string) Option {
	return func(c *config) {
		c.column = name
	}
}

// TextDataSource reads one entry per line
type TextDataSource struct {
	path string
}

// JSONDataSource reads an array of strings or an object of string values
type JSONDataSource struct {
	path string
}

// CSVDataSource reads one entry per row
type CSVDataSource struct {
	path   string
	column string
}

// NewDataSource creates a new data source based on the file extension
func NewDataSource(path string, opts ...Option) (DataSource, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".text":
		return &TextDataSource{path: path}, nil
	case ".json":
		return &JSONDataSource{path: path}, nil
	case ".csv":
		return &CSVDataSource{path: path, column: cfg.column}, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected .txt, .json or .csv)", ErrUnsupportedFormat, ext)
	}
}

// readUnicode returns the content of path as UTF-8. A byte order mark
// selects UTF-16LE or UTF-16BE and is removed; without one the file must
// be UTF-8.
func readUnicode(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(f, dec))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return data, nil
}

// GetEntries implements DataSource for TextDataSource
func (s *TextDataSource) GetEntries() ([]Entry, error) {
	data, err := readUnicode(s.path)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		entries = append(entries, Entry{Key: strconv.Itoa(n), Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return entries, nil
}

// GetPath implements DataSource for TextDataSource
func (s *TextDataSource) GetPath() string {
	return s.path
}

// Close implements DataSource for TextDataSource
func (s *TextDataSource) Close() error {
	return nil
}

// GetEntries implements DataSource for JSONDataSource
func (j *JSONDataSource) GetEntries() ([]Entry, error) {
	data, err := readUnicode(j.path)
	if err != nil {
		return nil, err
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		entries := make([]Entry, 0, len(list))
		for i, text := range list {
			entries = append(entries, Entry{Key: strconv.Itoa(i + 1), Text: text})
		}
		return entries, nil
	}

	var object map[string]string
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, fmt.Errorf("failed to parse JSON (expected an array of strings or an object of strings): %w", err)
	}

	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, Entry{Key: key, Text: object[key]})
	}
	return entries, nil
}

// GetPath implements DataSource for JSONDataSource
func (j *JSONDataSource) GetPath() string {
	return j.path
}

// Close implements DataSource for JSONDataSource
func (j *JSONDataSource) Close() error {
	return nil
}

// GetEntries implements DataSource for CSVDataSource
func (c *CSVDataSource) GetEntries() ([]Entry, error) {
	data, err := readUnicode(c.path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	column := 0
	if c.column != "" {
		if len(rows) == 0 {
			return nil, fmt.Errorf("column %q not found: file is empty", c.column)
		}
		column = slices.Index(rows[0], c.column)
		if column < 0 {
			return nil, fmt.Errorf("column %q not found in header %v", c.column, rows[0])
		}
		rows = rows[1:]
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		text := ""
		if column < len(row) {
			text = row[column]
		}
		entries = append(entries, Entry{Key: strconv.Itoa(i + 1), Text: text})
	}
	return entries, nil
}

// GetPath implements DataSource for CSVDataSource
func (c *CSVDataSource) GetPath() string {
	return c.path
}

// Close implements DataSource for CSVDataSource
func (c *CSVDataSource) Close() error {
	return nil
}
