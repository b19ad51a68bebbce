package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/me/mlfq/internal/logging"
	"github.com/me/mlfq/pkg/model"
	"gopkg.in/yaml.v3"
)

// Supported workload document formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatYAML = "yaml"
)

// Keywords of the text format. Detection order matters: process_table is a
// prefix of process_table_size.
const (
	keywordQueueNum  = "queue_num"
	keywordQuantum   = "time_quantum"
	keywordTableSize = "process_table_size"
	keywordTable     = "process_table"
)

// ErrSyntax marks malformed workload documents.
var ErrSyntax = errors.New("syntax error")

// Parser turns workload documents into model.Workload values.
type Parser struct {
	logger *slog.Logger
}

// New creates a Parser with the given logger. A nil logger discards.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Parser{logger: logger.With("component", "parser")}
}

// ParseFile reads path and parses it. "-" reads standard input.
func (p *Parser) ParseFile(path, format string) (*model.Workload, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}
	if format == "" || format == FormatAuto {
		format = DetectFormat(path, data)
	}
	return p.Parse(data, format)
}

// Parse parses data in the given format (text, yaml or auto).
func (p *Parser) Parse(data []byte, format string) (*model.Workload, error) {
	if format == "" || format == FormatAuto {
		format = DetectFormat("", data)
	}
	p.logger.Debug("parse workload", "format", format, "bytes", len(data))

	switch format {
	case FormatText:
		return p.ParseText(data)
	case FormatYAML, "yml", "json":
		return p.ParseYAML(data)
	default:
		return nil, fmt.Errorf("unknown workload format %q (want text, yaml or auto)", format)
	}
}

// DetectFormat picks a format from the file extension, falling back to the
// first significant line: text documents start with a "keyword = value" line.
func DetectFormat(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML
	case ".txt", ".in", ".cfg":
		return FormatText
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(stripComment(sc.Text()))
		if line == "" || line == "---" {
			continue
		}
		if strings.Contains(line, "=") {
			return FormatText
		}
		return FormatYAML
	}
	return FormatYAML
}

// ParseYAML parses a YAML (or JSON) workload document.
func (p *Parser) ParseYAML(data []byte) (*model.Workload, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var w model.Workload
	if err := dec.Decode(&w); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty workload document", ErrSyntax)
		}
		return nil, fmt.Errorf("%w: YAML parse error: %v", ErrSyntax, err)
	}
	return &w, nil
}

// ParseText parses the keyword text format:
//
//	queue_num = 2
//	time_quantum = 2 4
//	process_table_size = 2
//	process_table =
//	P1 0 5
//	P2 1 3
//
// '#' starts a comment. When process_table_size is absent, rows are read
// until the next keyword line or the end of input.
func (p *Parser) ParseText(data []byte) (*model.Workload, error) {
	var w model.Workload
	tableSize := -1
	inTable := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(stripComment(sc.Text()))
		if line == "" {
			continue
		}

		if inTable && !strings.Contains(line, "=") {
			row, err := parseRow(line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, lineNo, err)
			}
			w.Processes = append(w.Processes, row)
			if tableSize >= 0 && len(w.Processes) == tableSize {
				inTable = false
			}
			continue
		}
		inTable = false

		key, value, found := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case strings.Contains(key, keywordQueueNum):
			n, err := parseInt(value, found, keywordQueueNum)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, lineNo, err)
			}
			w.QueueNum = n
		case strings.Contains(key, keywordQuantum):
			if !found {
				return nil, fmt.Errorf("%w: line %d: expected %s = <q0> <q1> ...", ErrSyntax, lineNo, keywordQuantum)
			}
			w.TimeQuantum = w.TimeQuantum[:0]
			for _, tok := range strings.Fields(value) {
				q, err := strconv.Atoi(tok)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: time quantum %q is not an integer", ErrSyntax, lineNo, tok)
				}
				w.TimeQuantum = append(w.TimeQuantum, q)
			}
		case strings.Contains(key, keywordTableSize):
			n, err := parseInt(value, found, keywordTableSize)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, lineNo, err)
			}
			if n < 0 {
				return nil, fmt.Errorf("%w: line %d: %s must be >= 0", ErrSyntax, lineNo, keywordTableSize)
			}
			tableSize = n
		case strings.Contains(key, keywordTable):
			if value != "" {
				return nil, fmt.Errorf("%w: line %d: process rows must start on the line after %s", ErrSyntax, lineNo, keywordTable)
			}
			w.Processes = w.Processes[:0]
			inTable = tableSize != 0
		default:
			p.logger.Warn("ignoring unrecognised line", "line", lineNo, "text", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}

	if tableSize >= 0 && len(w.Processes) != tableSize {
		return nil, fmt.Errorf("%w: %s is %d but %d process rows were given",
			ErrSyntax, keywordTableSize, tableSize, len(w.Processes))
	}
	return &w, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func parseInt(value string, found bool, keyword string) (int, error) {
	if !found || value == "" {
		return 0, fmt.Errorf("expected %s = <integer>", keyword)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s value %q is not an integer", keyword, value)
	}
	return n, nil
}

// parseRow parses "name arrival burst".
func parseRow(line string) (model.ProcessSpec, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return model.ProcessSpec{}, fmt.Errorf("process row %q: want <name> <arrival> <burst>", line)
	}
	arrival, err := strconv.Atoi(fields[1])
	if err != nil {
		return model.ProcessSpec{}, fmt.Errorf("process %s: arrival time %q is not an integer", fields[0], fields[1])
	}
	burst, err := strconv.Atoi(fields[2])
	if err != nil {
		return model.ProcessSpec{}, fmt.Errorf("process %s: burst time %q is not an integer", fields[0], fields[2])
	}
	return model.ProcessSpec{Name: fields[0], ArrivalTime: arrival, BurstTime: burst}, nil
}
