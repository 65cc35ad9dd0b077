package verify

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vaibhaw-/surgen/internal/surgen/generate"
)

const (
	tupleOpen  = "(gen_random_uuid(), "
	tupleWidth = 9
	insertHead = "INSERT INTO surgeries ("
)

var ErrMalformed = errors.New("malformed surgery sql")

// Row is one parsed VALUES tuple. Field order follows generate.Columns
// without the leading id.
type Row struct {
	Line           int
	PatientName    string
	ProtocolNumber string
	Indication     string
	ProcedureName  string
	SurgeryDate    string
	SalonID        string
	DoctorID       string
	Phone1         string
	Phone2         string
	WaitingList    bool
}

// Document is a parsed generator output.
type Document struct {
	Header     string
	Rows       []Row
	Terminated bool
	Total      int
	HasTotal   bool
}

// Parse reads a generated SQL document. It only understands the layout the
// generator writes; anything else is reported as ErrMalformed with a line number.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	sawInsert := false
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")

		switch {
		case strings.TrimSpace(line) == "":
			continue
		case strings.HasPrefix(line, generate.TotalPrefix):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, generate.TotalPrefix)))
			if err != nil {
				return nil, fmt.Errorf("line %d: total %q: %w", lineNo, line, ErrMalformed)
			}
			doc.Total = n
			doc.HasTotal = true
		case strings.HasPrefix(line, "--"):
			if doc.Header == "" {
				doc.Header = line
			}
		case strings.HasPrefix(line, insertHead):
			want := insertHead + generate.Columns + ") VALUES"
			if line != want {
				return nil, fmt.Errorf("line %d: unexpected column list: %w", lineNo, ErrMalformed)
			}
			sawInsert = true
		case strings.HasPrefix(line, tupleOpen):
			if !sawInsert || doc.Terminated {
				return nil, fmt.Errorf("line %d: tuple outside INSERT: %w", lineNo, ErrMalformed)
			}
			row, err := parseTuple(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v: %w", lineNo, err, ErrMalformed)
			}
			row.Line = lineNo
			doc.Rows = append(doc.Rows, row)
		case line == ";":
			if !sawInsert {
				return nil, fmt.Errorf("line %d: terminator before INSERT: %w", lineNo, ErrMalformed)
			}
			doc.Terminated = true
		default:
			return nil, fmt.Errorf("line %d: unexpected content %q: %w", lineNo, line, ErrMalformed)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sql: %w", err)
	}
	// an empty run writes only the comments
	if !sawInsert && !doc.HasTotal {
		return nil, fmt.Errorf("no INSERT statement: %w", ErrMalformed)
	}
	return doc, nil
}

// parseTuple decodes one "(gen_random_uuid(), '...', ..., false)" line.
// A trailing comma separator is accepted.
func parseTuple(line string) (Row, error) {
	s := strings.TrimSuffix(line, ",")
	if !strings.HasSuffix(s, ")") {
		return Row{}, fmt.Errorf("tuple not closed")
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, tupleOpen), ")")

	fields := make([]string, 0, tupleWidth)
	for len(fields) < tupleWidth {
		val, rest, err := readQuoted(s)
		if err != nil {
			return Row{}, fmt.Errorf("field %d: %v", len(fields)+1, err)
		}
		if !strings.HasPrefix(rest, ", ") {
			return Row{}, fmt.Errorf("field %d: missing separator", len(fields)+1)
		}
		fields = append(fields, val)
		s = rest[2:]
	}

	var waiting bool
	switch s {
	case "false":
	case "true":
		waiting = true
	default:
		return Row{}, fmt.Errorf("is_waiting_list %q is not a boolean", s)
	}

	return Row{
		PatientName:    fields[0],
		ProtocolNumber: fields[1],
		Indication:     fields[2],
		ProcedureName:  fields[3],
		SurgeryDate:    fields[4],
		SalonID:        fields[5],
		DoctorID:       fields[6],
		Phone1:         fields[7],
		Phone2:         fields[8],
		WaitingList:    waiting,
	}, nil
}

// readQuoted consumes a single-quoted SQL literal with '' escapes.
func readQuoted(s string) (string, string, error) {
	if !strings.HasPrefix(s, "'") {
		return "", "", fmt.Errorf("expected quoted string")
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] != '\'' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		return b.String(), s[i+1:], nil
	}
	return "", "", fmt.Errorf("unterminated string")
}
