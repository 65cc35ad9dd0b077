// Package dataset holds the fixed lookup tables the surgery generator draws
// from: operating rooms, doctors, patient names and gynecological cases.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const DateLayout = "2006-01-02"

var (
	ErrEmptyTable   = errors.New("lookup table is empty")
	ErrInvalidRange = errors.New("date range end is before start")
	ErrInvalidID    = errors.New("identifier is not a UUID")
)

// Case pairs a diagnosis with the procedure performed for it.
type Case struct {
	Indication string `yaml:"indication"`
	Procedure  string `yaml:"procedure"`
}

// Dataset is the complete input of one generation run.
type Dataset struct {
	Start          time.Time
	End            time.Time
	ProtocolPrefix string
	SalonIDs       []string
	DoctorIDs      []string
	PatientNames   []string
	Surnames       []string
	Cases          []Case
}

// Default returns the compiled-in dataset covering December 2025 and January 2026.
func Default() Dataset {
	return Dataset{
		Start:          time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
		ProtocolPrefix: "JIN",
		SalonIDs: []string{
			"f717ec03-2bfd-43d7-b761-41f3ee320fa0", // salon 5
			"2f3c3a71-e835-4bfe-a8c9-f7c479e8adc6", // salon 6
		},
		DoctorIDs: []string{
			"77dd8708-9bca-4f9c-a90c-331f4477a07f", // Prof. Dr. Ayşe Yılmaz
			"6b7b9382-b04c-42e4-bc9e-a033364bac33", // Doç. Dr. Mehmet Kaya
			"f8800316-b292-477a-8d71-11e2f38427b1", // Op. Dr. Fatma Demir
		},
		PatientNames: []string{
			"Zehra", "Aylin", "Elif", "Selin", "Merve", "Fatma", "Büşra", "Gamze",
			"Deniz", "Işıl", "Cansu", "Ebru", "Gizem", "Hülya", "İpek", "Jale",
			"Kezban", "Leyla", "Melis", "Nalan", "Oya", "Pınar", "Rabia", "Sevgi",
			"Tuba", "Ülkü", "Vildan", "Yelda", "Zeynep", "Ayşegül", "Betül", "Canan",
		},
		Surnames: []string{
			"Kaya", "Demir", "Yılmaz", "Ak", "Kara", "Öz", "Aydın", "Çelik",
			"Arslan", "Yurt", "Yıldız", "Kılıç", "Şahin", "Güneş", "Akar", "Erdoğan",
			"Taş", "Korkmaz", "Yavuz", "Öztürk", "Bilgin", "Çakır", "Şen", "Durmuş",
			"Ateş", "Polat", "Aslan", "Kurt", "Başar", "Nas", "Özkan", "Tekin",
		},
		Cases: []Case{
			{"Myoma uteri", "Total abdominal histerektomi"},
			{"Myoma uteri", "Laparoskopik myomektomi"},
			{"Myoma uteri", "Abdominal myomektomi"},
			{"Endometriozis", "Laparoskopik over kistektomi"},
			{"Endometriozis", "Laparoskopik ablasyon"},
			{"Endometriozis", "Laparoskopik endometriozis eksizyonu"},
			{"Over kisti", "Laparoskopik kistektomi"},
			{"Over kisti", "Laparoskopik over kistektomi"},
			{"Adenomyozis", "Total histerektomi"},
			{"Adenomyozis", "Laparoskopik histerektomi"},
			{"Endometrial polyp", "Histeroskopik polipektomi"},
			{"Prolapsus uteri", "Vajinal histerektomi"},
		},
	}
}

// Validate reports the first structural problem that would make generation
// index into an empty table or walk a reversed range.
func (d Dataset) Validate() error {
	tables := []struct {
		name string
		n    int
	}{
		{"salons", len(d.SalonIDs)},
		{"doctors", len(d.DoctorIDs)},
		{"patient names", len(d.PatientNames)},
		{"surnames", len(d.Surnames)},
		{"cases", len(d.Cases)},
	}
	for _, t := range tables {
		if t.n == 0 {
			return fmt.Errorf("%s: %w", t.name, ErrEmptyTable)
		}
	}
	if d.End.Before(d.Start) {
		return fmt.Errorf("%s..%s: %w", d.Start.Format(DateLayout), d.End.Format(DateLayout), ErrInvalidRange)
	}
	for _, id := range d.SalonIDs {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("salon %q: %w", id, ErrInvalidID)
		}
	}
	for _, id := range d.DoctorIDs {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("doctor %q: %w", id, ErrInvalidID)
		}
	}
	return nil
}

// SalonIndex returns the position of id in SalonIDs, or -1.
func (d Dataset) SalonIndex(id string) int {
	for i, s := range d.SalonIDs {
		if s == id {
			return i
		}
	}
	return -1
}

type yamlDataset struct {
	Start          string   `yaml:"start"`
	End            string   `yaml:"end"`
	ProtocolPrefix string   `yaml:"protocol_prefix"`
	Salons         []string `yaml:"salons"`
	Doctors        []string `yaml:"doctors"`
	PatientNames   []string `yaml:"patient_names"`
	Surnames       []string `yaml:"surnames"`
	Cases          []Case   `yaml:"cases"`
}

// WriteYAML dumps the dataset in a human readable form.
func (d Dataset) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	doc := yamlDataset{
		Start:          d.Start.Format(DateLayout),
		End:            d.End.Format(DateLayout),
		ProtocolPrefix: d.ProtocolPrefix,
		Salons:         d.SalonIDs,
		Doctors:        d.DoctorIDs,
		PatientNames:   d.PatientNames,
		Surnames:       d.Surnames,
		Cases:          d.Cases,
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return enc.Close()
}
