// Package generate synthesizes surgery records from a dataset and renders
// them as a single SQL INSERT statement.
package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/vaibhaw-/surgen/internal/surgen/dataset"
	"github.com/vaibhaw-/surgen/internal/surgen/logger"
	"go.uber.org/zap"
)

// Generator walks a dataset's date range and emits records in a fixed order.
// It holds no state between runs; every Generate call starts from protocol 1.
type Generator struct {
	ds  dataset.Dataset
	log *zap.SugaredLogger
}

// New validates ds and returns a generator over it.
func New(ds dataset.Dataset) (*Generator, error) {
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	return &Generator{ds: ds, log: logger.L()}, nil
}

// Generate hands every record to fn in emission order and returns how many
// were produced. It stops at the first error from fn or when ctx is done.
func (g *Generator) Generate(ctx context.Context, fn func(Record) error) (int, error) {
	ds := g.ds
	protocol := 1
	patient := 0
	days := 0

	for day := ds.Start; !day.After(ds.End); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return protocol - 1, err
		}
		if IsWeekend(day) {
			g.log.Debugw("skip weekend", "date", day.Format(dataset.DateLayout))
			continue
		}
		days++

		for _, salon := range ds.SalonIDs {
			n := SurgeriesPerSalon(day)
			for i := 0; i < n; i++ {
				c := ds.Cases[(patient+i)%len(ds.Cases)]
				phone1, phone2 := Phones(protocol)
				rec := Record{
					PatientName:    ds.PatientNames[patient%len(ds.PatientNames)] + " " + ds.Surnames[patient%len(ds.Surnames)],
					ProtocolNumber: ProtocolNumber(ds.ProtocolPrefix, day.Year(), protocol),
					Indication:     c.Indication,
					ProcedureName:  c.Procedure,
					SurgeryDate:    day,
					SalonID:        salon,
					DoctorID:       ds.DoctorIDs[protocol%len(ds.DoctorIDs)],
					Phone1:         phone1,
					Phone2:         phone2,
				}
				if err := fn(rec); err != nil {
					return protocol - 1, err
				}
				protocol++
				patient++
			}
		}
	}

	g.log.Debugw("generation finished", "weekdays", days, "records", protocol-1)
	return protocol - 1, nil
}

// Records collects the whole run into a slice.
func (g *Generator) Records(ctx context.Context) ([]Record, error) {
	out := make([]Record, 0, ExpectedCount(g.ds))
	_, err := g.Generate(ctx, func(r Record) error {
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpectedCount is the number of records a run over ds produces.
func ExpectedCount(ds dataset.Dataset) int {
	total := 0
	for _, day := range Weekdays(ds) {
		total += len(ds.SalonIDs) * SurgeriesPerSalon(day)
	}
	return total
}

// Weekdays lists the dates in ds's range that receive surgeries.
func Weekdays(ds dataset.Dataset) []time.Time {
	var out []time.Time
	for day := ds.Start; !day.After(ds.End); day = day.AddDate(0, 0, 1) {
		if !IsWeekend(day) {
			out = append(out, day)
		}
	}
	return out
}
