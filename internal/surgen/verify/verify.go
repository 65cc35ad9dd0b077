// Package verify checks a generated surgeries document against the dataset
// it was generated from.
package verify

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/vaibhaw-/surgen/internal/surgen/dataset"
	"github.com/vaibhaw-/surgen/internal/surgen/generate"
)

var protocolRe = regexp.MustCompile(`^([A-Z]+)-(\d{4})-(\d{4,})$`)

// Violation is a single failed check, tied to a line of the input when one applies.
type Violation struct {
	Line int
	Msg  string
}

func (v *Violation) Error() string {
	if v.Line == 0 {
		return v.Msg
	}
	return fmt.Sprintf("line %d: %s", v.Line, v.Msg)
}

// Report summarizes a verification run.
type Report struct {
	Rows          int    `json:"rows"`
	Days          int    `json:"days"`
	FirstProtocol string `json:"first_protocol,omitempty"`
	LastProtocol  string `json:"last_protocol,omitempty"`
	Violations    int    `json:"violations"`
}

type block struct {
	date  string
	salon string
	line  int
	n     int
}

// Check runs every row-level and block-level check and returns all
// violations combined with multierr. A nil error means every row is the one
// the generator would emit for ds at that position: dates, protocol,
// patient name, case, doctor, phones and salon order all match.
func Check(doc *Document, ds dataset.Dataset) (Report, error) {
	if err := ds.Validate(); err != nil {
		return Report{}, fmt.Errorf("invalid dataset: %w", err)
	}

	var errs error
	add := func(line int, format string, args ...any) {
		errs = multierr.Append(errs, &Violation{Line: line, Msg: fmt.Sprintf(format, args...)})
	}

	rep := Report{Rows: len(doc.Rows)}
	if len(doc.Rows) > 0 {
		rep.FirstProtocol = doc.Rows[0].ProtocolNumber
		rep.LastProtocol = doc.Rows[len(doc.Rows)-1].ProtocolNumber
	}

	if doc.Header != generate.Header {
		add(0, "header %q, want %q", doc.Header, generate.Header)
	}
	if !doc.Terminated {
		if len(doc.Rows) > 0 {
			add(0, "INSERT statement is not terminated")
		}
	}
	if !doc.HasTotal {
		add(0, "missing total comment")
	} else if doc.Total != len(doc.Rows) {
		add(0, "total comment says %d, document has %d rows", doc.Total, len(doc.Rows))
	}

	var blocks []block
	var prevDay time.Time
	for i, row := range doc.Rows {
		seq := i + 1

		day, err := dateparse.ParseIn(row.SurgeryDate, time.UTC)
		if err != nil {
			add(row.Line, "surgery_date %q: %v", row.SurgeryDate, err)
			continue
		}
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		date := day.Format(dataset.DateLayout)
		if date != row.SurgeryDate {
			add(row.Line, "surgery_date %q is not an ISO date, want %s", row.SurgeryDate, date)
		}

		// position of this row inside its (date, salon) block
		pos := 0
		if n := len(blocks); n > 0 && blocks[n-1].date == date && blocks[n-1].salon == row.SalonID {
			pos = blocks[n-1].n
			blocks[n-1].n++
		} else {
			blocks = append(blocks, block{date: date, salon: row.SalonID, line: row.Line, n: 1})
		}

		if generate.IsWeekend(day) {
			add(row.Line, "surgery_date %s is a %s", row.SurgeryDate, day.Weekday())
		}
		if day.Before(ds.Start) || day.After(ds.End) {
			add(row.Line, "surgery_date %s outside %s..%s", row.SurgeryDate,
				ds.Start.Format(dataset.DateLayout), ds.End.Format(dataset.DateLayout))
		}
		if day.Before(prevDay) {
			add(row.Line, "surgery_date %s goes backwards", row.SurgeryDate)
		}
		prevDay = day

		checkProtocol(row, seq, day, ds, add)

		if _, err := uuid.Parse(row.SalonID); err != nil {
			add(row.Line, "salon_id %q is not a UUID", row.SalonID)
		} else if ds.SalonIndex(row.SalonID) < 0 {
			add(row.Line, "unknown salon_id %s", row.SalonID)
		}
		if _, err := uuid.Parse(row.DoctorID); err != nil {
			add(row.Line, "responsible_doctor_id %q is not a UUID", row.DoctorID)
		} else if want := ds.DoctorIDs[seq%len(ds.DoctorIDs)]; row.DoctorID != want {
			add(row.Line, "responsible_doctor_id %s, want %s for sequence %d", row.DoctorID, want, seq)
		}

		p1, p2 := generate.Phones(seq)
		if row.Phone1 != p1 || row.Phone2 != p2 {
			add(row.Line, "phones %q/%q, want %q/%q", row.Phone1, row.Phone2, p1, p2)
		}
		if row.WaitingList {
			add(row.Line, "is_waiting_list is true")
		}

		checkLookups(row, i, pos, ds, add)
	}

	rep.Days = checkBlocks(blocks, ds, add)
	rep.Violations = len(multierr.Errors(errs))
	return rep, errs
}

// checkLookups compares the table-driven columns with what the generator
// picks for patient index p at position pos of its salon block.
func checkLookups(row Row, p, pos int, ds dataset.Dataset, add func(int, string, ...any)) {
	name := ds.PatientNames[p%len(ds.PatientNames)] + " " + ds.Surnames[p%len(ds.Surnames)]
	if row.PatientName != name {
		add(row.Line, "patient_name %q, want %q", row.PatientName, name)
	}
	c := ds.Cases[(p+pos)%len(ds.Cases)]
	if row.Indication != c.Indication || row.ProcedureName != c.Procedure {
		add(row.Line, "case %q/%q, want %q/%q", row.Indication, row.ProcedureName, c.Indication, c.Procedure)
	}
}

func checkProtocol(row Row, seq int, day time.Time, ds dataset.Dataset, add func(int, string, ...any)) {
	m := protocolRe.FindStringSubmatch(row.ProtocolNumber)
	if m == nil {
		add(row.Line, "protocol_number %q is malformed", row.ProtocolNumber)
		return
	}
	if m[1] != ds.ProtocolPrefix {
		add(row.Line, "protocol_number %s has prefix %s, want %s", row.ProtocolNumber, m[1], ds.ProtocolPrefix)
	}
	if year, _ := strconv.Atoi(m[2]); year != day.Year() {
		add(row.Line, "protocol_number %s year does not match surgery_date %s", row.ProtocolNumber, row.SurgeryDate)
	}
	if got, _ := strconv.Atoi(m[3]); got != seq {
		add(row.Line, "protocol_number %s out of sequence, want %04d", row.ProtocolNumber, seq)
	}
}

// checkBlocks verifies salon order and per-salon row counts for each day
// and that every weekday in the range is present. It returns the number of
// distinct days seen.
func checkBlocks(blocks []block, ds dataset.Dataset, add func(int, string, ...any)) int {
	byDay := map[string][]block{}
	var order []string
	for _, b := range blocks {
		if _, ok := byDay[b.date]; !ok {
			order = append(order, b.date)
		}
		byDay[b.date] = append(byDay[b.date], b)
	}

	for _, date := range order {
		day, _ := time.Parse(dataset.DateLayout, date)
		want := generate.SurgeriesPerSalon(day)
		got := byDay[date]
		if len(got) != len(ds.SalonIDs) {
			add(got[0].line, "%s has %d salon blocks, want %d", date, len(got), len(ds.SalonIDs))
		}
		for k, b := range got {
			if k < len(ds.SalonIDs) && b.salon != ds.SalonIDs[k] {
				add(b.line, "%s block %d is salon %s, want %s", date, k+1, b.salon, ds.SalonIDs[k])
			}
			if b.n != want {
				add(b.line, "%s salon %s has %d surgeries, want %d", date, b.salon, b.n, want)
			}
		}
	}

	for _, day := range generate.Weekdays(ds) {
		date := day.Format(dataset.DateLayout)
		if _, ok := byDay[date]; !ok {
			add(0, "weekday %s has no surgeries", date)
		}
	}
	return len(order)
}
