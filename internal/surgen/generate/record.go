package generate

import (
	"fmt"
	"time"
)

// Record is one synthetic surgery row. Its primary key is left to the
// database (gen_random_uuid()) and is never computed here.
type Record struct {
	PatientName    string
	ProtocolNumber string
	Indication     string
	ProcedureName  string
	SurgeryDate    time.Time
	SalonID        string
	DoctorID       string
	Phone1         string
	Phone2         string
	WaitingList    bool
}

const (
	phonePrefix1 = "0532"
	phonePrefix2 = "0533"
)

// ProtocolNumber formats a case identifier such as JIN-2025-0001.
func ProtocolNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// Phones encodes seq into the two contact numbers of a record.
func Phones(seq int) (string, string) {
	payload := fmt.Sprintf("%03d %04d", seq/1000, seq%1000)
	return phonePrefix1 + " " + payload, phonePrefix2 + " " + payload
}

// SurgeriesPerSalon is the number of rows each salon gets on a given day.
func SurgeriesPerSalon(day time.Time) int {
	if day.Day()%2 == 0 {
		return 2
	}
	return 3
}

// IsWeekend reports whether no surgeries are scheduled on day.
func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
