package generate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaibhaw-/surgen/internal/surgen/dataset"
)

func defaultRecords(t *testing.T) []Record {
	t.Helper()
	g, err := New(dataset.Default())
	require.NoError(t, err)
	recs, err := g.Records(context.Background())
	require.NoError(t, err)
	return recs
}

// fakeDataset builds a seeded random dataset with mismatched table lengths.
func fakeDataset(seed uint64) dataset.Dataset {
	f := gofakeit.New(seed)
	ds := dataset.Dataset{
		Start:          time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		ProtocolPrefix: "TST",
	}
	salons, doctors := f.Number(1, 4), f.Number(1, 5)
	names, surnames, cases := f.Number(1, 40), f.Number(1, 40), f.Number(1, 15)
	for i := 0; i < salons; i++ {
		ds.SalonIDs = append(ds.SalonIDs, f.UUID())
	}
	for i := 0; i < doctors; i++ {
		ds.DoctorIDs = append(ds.DoctorIDs, f.UUID())
	}
	for i := 0; i < names; i++ {
		ds.PatientNames = append(ds.PatientNames, f.FirstName())
	}
	for i := 0; i < surnames; i++ {
		ds.Surnames = append(ds.Surnames, f.LastName())
	}
	for i := 0; i < cases; i++ {
		ds.Cases = append(ds.Cases, dataset.Case{Indication: f.LastName() + " syndrome", Procedure: f.LastName() + "ectomy"})
	}
	return ds
}

func TestNew_RejectsInvalidDataset(t *testing.T) {
	ds := dataset.Default()
	ds.Cases = nil
	_, err := New(ds)
	assert.ErrorIs(t, err, dataset.ErrEmptyTable)
}

func TestGenerate_FirstDay(t *testing.T) {
	recs := defaultRecords(t)
	require.GreaterOrEqual(t, len(recs), 6)

	salon5 := "f717ec03-2bfd-43d7-b761-41f3ee320fa0"
	salon6 := "2f3c3a71-e835-4bfe-a8c9-f7c479e8adc6"

	// 2025-12-01 is a Monday with an odd day-of-month: 3 rows per salon
	for i := 0; i < 6; i++ {
		assert.Equal(t, "2025-12-01", recs[i].SurgeryDate.Format(dataset.DateLayout))
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, salon5, recs[i].SalonID, "record %d", i)
	}
	for i := 3; i < 6; i++ {
		assert.Equal(t, salon6, recs[i].SalonID, "record %d", i)
	}
	assert.Equal(t, "2025-12-02", recs[6].SurgeryDate.Format(dataset.DateLayout))

	first := recs[0]
	assert.Equal(t, "Zehra Kaya", first.PatientName)
	assert.Equal(t, "JIN-2025-0001", first.ProtocolNumber)
	assert.Equal(t, "Myoma uteri", first.Indication)
	assert.Equal(t, "Total abdominal histerektomi", first.ProcedureName)
	assert.Equal(t, "6b7b9382-b04c-42e4-bc9e-a033364bac33", first.DoctorID)
	assert.Equal(t, "0532 000 0001", first.Phone1)
	assert.Equal(t, "0533 000 0001", first.Phone2)
	assert.False(t, first.WaitingList)

	// case index is (patient + i), so the second row skips a case
	assert.Equal(t, "Aylin Demir", recs[1].PatientName)
	assert.Equal(t, "Abdominal myomektomi", recs[1].ProcedureName)
	assert.Equal(t, "Laparoskopik ablasyon", recs[2].ProcedureName)
	// i restarts per salon
	assert.Equal(t, "Laparoskopik over kistektomi", recs[3].ProcedureName)
}

func TestGenerate_Totals(t *testing.T) {
	recs := defaultRecords(t)
	assert.Len(t, recs, 226)
	assert.Equal(t, 226, ExpectedCount(dataset.Default()))
	assert.Len(t, Weekdays(dataset.Default()), 45)

	// January restarts the protocol year but not the sequence
	var jan *Record
	for i := range recs {
		if recs[i].SurgeryDate.Year() == 2026 {
			jan = &recs[i]
			break
		}
	}
	require.NotNil(t, jan)
	assert.Equal(t, "JIN-2026-0117", jan.ProtocolNumber)
	assert.Equal(t, "Oya Bilgin", jan.PatientName)

	last := recs[len(recs)-1]
	assert.Equal(t, "JIN-2026-0226", last.ProtocolNumber)
	assert.Equal(t, "2026-01-30", last.SurgeryDate.Format(dataset.DateLayout))
}

func TestGenerate_Properties(t *testing.T) {
	for _, seed := range []uint64{1, 7, 42, 1234} {
		ds := fakeDataset(seed)
		g, err := New(ds)
		require.NoError(t, err)
		recs, err := g.Records(context.Background())
		require.NoError(t, err)

		require.Len(t, recs, ExpectedCount(ds), "seed %d", seed)
		perBlock := map[string]int{}
		for i, r := range recs {
			seq := i + 1
			assert.False(t, IsWeekend(r.SurgeryDate), "seed %d: weekend row %d", seed, seq)
			assert.Equal(t, ProtocolNumber("TST", r.SurgeryDate.Year(), seq), r.ProtocolNumber)
			assert.Equal(t, ds.DoctorIDs[seq%len(ds.DoctorIDs)], r.DoctorID)
			wantName := ds.PatientNames[i%len(ds.PatientNames)] + " " + ds.Surnames[i%len(ds.Surnames)]
			assert.Equal(t, wantName, r.PatientName)
			perBlock[r.SurgeryDate.Format(dataset.DateLayout)+"/"+r.SalonID]++
		}
		for _, day := range Weekdays(ds) {
			for _, salon := range ds.SalonIDs {
				key := day.Format(dataset.DateLayout) + "/" + salon
				assert.Equal(t, SurgeriesPerSalon(day), perBlock[key], "seed %d block %s", seed, key)
			}
		}
	}
}

func TestGenerate_StopsOnCallbackError(t *testing.T) {
	g, err := New(dataset.Default())
	require.NoError(t, err)

	boom := errors.New("boom")
	n, err := g.Generate(context.Background(), func(r Record) error {
		if r.ProtocolNumber == "JIN-2025-0004" {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, n)
}

func TestGenerate_Cancelled(t *testing.T) {
	g, err := New(dataset.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := g.Generate(ctx, func(Record) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}

func TestGenerate_WeekendOnlyRange(t *testing.T) {
	ds := dataset.Default()
	ds.Start = time.Date(2025, time.December, 6, 0, 0, 0, 0, time.UTC)
	ds.End = time.Date(2025, time.December, 7, 0, 0, 0, 0, time.UTC)
	g, err := New(ds)
	require.NoError(t, err)
	recs, err := g.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 0, ExpectedCount(ds))
}

func TestHelpers(t *testing.T) {
	p1, p2 := Phones(1234)
	assert.Equal(t, "0532 001 0234", p1)
	assert.Equal(t, "0533 001 0234", p2)

	assert.Equal(t, "JIN-2025-0042", ProtocolNumber("JIN", 2025, 42))
	assert.Equal(t, "JIN-2026-12345", ProtocolNumber("JIN", 2026, 12345))

	assert.Equal(t, 3, SurgeriesPerSalon(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, SurgeriesPerSalon(time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC)))
	assert.True(t, IsWeekend(time.Date(2025, 12, 6, 0, 0, 0, 0, time.UTC)))
	assert.True(t, IsWeekend(time.Date(2025, 12, 7, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsWeekend(time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)))
}

func TestWriteSQL_Golden(t *testing.T) {
	want, err := os.ReadFile(filepath.Join("testdata", "surgeries.golden.sql"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSQL(&buf, defaultRecords(t)))
	assert.Equal(t, string(want), buf.String())
}

func TestWriteSQL_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, WriteSQL(&a, defaultRecords(t)))
	require.NoError(t, WriteSQL(&b, defaultRecords(t)))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestWriteSQL_EscapesQuotes(t *testing.T) {
	rec := Record{
		PatientName:    "Siobhan O'Brien",
		ProtocolNumber: "JIN-2025-0001",
		Indication:     "Crohn's disease",
		ProcedureName:  "Resection",
		SurgeryDate:    time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		SalonID:        "s",
		DoctorID:       "d",
		Phone1:         "0532 000 0001",
		Phone2:         "0533 000 0001",
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSQL(&buf, []Record{rec}))
	out := buf.String()
	assert.Contains(t, out, "'Siobhan O''Brien'")
	assert.Contains(t, out, "'Crohn''s disease'")
	assert.Contains(t, out, "false)\n;\n")
	assert.True(t, strings.HasSuffix(out, TotalPrefix+"1\n"))
}

func TestSQLWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	sw := NewSQLWriter(&buf)
	require.NoError(t, sw.Close())
	want := Header + "\n\n" + TotalPrefix + "0\n"
	assert.Equal(t, want, buf.String())
	assert.NotContains(t, buf.String(), "INSERT")

	// closing twice is harmless, writing after close is not
	require.NoError(t, sw.Close())
	assert.Error(t, sw.Write(Record{}))
	assert.Equal(t, 0, sw.Count())
}
