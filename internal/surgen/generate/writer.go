package generate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vaibhaw-/surgen/internal/surgen/dataset"
)

const (
	Header  = "-- Gynecological surgeries for December 2025 and January 2026"
	Columns = "id, patient_name, protocol_number, indication, procedure_name, surgery_date, salon_id, responsible_doctor_id, phone_number_1, phone_number_2, is_waiting_list"
	// TotalPrefix starts the trailing comment that carries the row count.
	TotalPrefix = "-- Total surgeries generated: "
)

// sqlEscape escapes single quotes for safe inline SQL generation.
func sqlEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Tuple renders r as one parenthesized VALUES entry without a separator.
func Tuple(r Record) string {
	return fmt.Sprintf("(gen_random_uuid(), '%s', '%s', '%s', '%s', '%s', '%s', '%s', '%s', '%s', %t)",
		sqlEscape(r.PatientName),
		sqlEscape(r.ProtocolNumber),
		sqlEscape(r.Indication),
		sqlEscape(r.ProcedureName),
		r.SurgeryDate.Format(dataset.DateLayout),
		sqlEscape(r.SalonID),
		sqlEscape(r.DoctorID),
		sqlEscape(r.Phone1),
		sqlEscape(r.Phone2),
		r.WaitingList,
	)
}

// SQLWriter streams records into one INSERT statement. The statement is
// opened on the first Write; a writer closed without records emits only the
// header and total comments, since an INSERT without tuples is not valid SQL.
type SQLWriter struct {
	w      *bufio.Writer
	count  int
	closed bool
}

func NewSQLWriter(w io.Writer) *SQLWriter {
	return &SQLWriter{w: bufio.NewWriter(w)}
}

// Write appends one tuple. Tuples are joined with ",\n".
func (s *SQLWriter) Write(r Record) error {
	if s.closed {
		return fmt.Errorf("write record %s: writer closed", r.ProtocolNumber)
	}
	if s.count == 0 {
		fmt.Fprintf(s.w, "%s\n\n", Header)
		fmt.Fprintf(s.w, "INSERT INTO surgeries (%s) VALUES\n", Columns)
	} else {
		s.w.WriteString(",\n")
	}
	s.w.WriteString(Tuple(r))
	s.count++
	return nil
}

// Count returns the number of tuples written so far.
func (s *SQLWriter) Count() int {
	return s.count
}

// Close terminates the statement, writes the total comment and flushes.
func (s *SQLWriter) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.count == 0 {
		fmt.Fprintf(s.w, "%s\n\n", Header)
	} else {
		s.w.WriteString("\n;\n\n")
	}
	fmt.Fprintf(s.w, "%s%d\n", TotalPrefix, s.count)
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush sql output: %w", err)
	}
	return nil
}

// WriteSQL renders records as the complete output document.
func WriteSQL(w io.Writer, records []Record) error {
	sw := NewSQLWriter(w)
	for _, r := range records {
		if err := sw.Write(r); err != nil {
			return err
		}
	}
	return sw.Close()
}
