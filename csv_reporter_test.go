package simcore

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCSVReporterWritesHeaderAndMonthlyRows(t *testing.T) {
	pop := NewPopulation(ParasiteDensityLevels{}, 1)
	pop.AddNewPerson(0, 365*10, nil)
	collector := NewDataCollector(1)
	collector.RecordClinicalEpisode(0, 0)
	collector.RecordTreatment(0, 10)

	cal := NewCalendar(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	reporter := NewCSVReporter(pop, collector, cal)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	if err := reporter.Initialize(1, path); err != nil {
		t.Fatalf("Initialize() = %v, want nil", err)
	}
	if err := reporter.MonthlyReport(30); err != nil {
		t.Fatalf("MonthlyReport() = %v, want nil", err)
	}
	if err := reporter.AfterRun(); err != nil {
		t.Fatalf("AfterRun() = %v, want nil", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to reopen written csv: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse written csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d rows, want 2 (header + one location row)", len(records))
	}
	if records[0][0] != "day" {
		t.Fatalf("header row = %v, want it to start with \"day\"", records[0])
	}
	if records[1][0] != "30" || records[1][1] != "0" {
		t.Fatalf("data row = %v, want day=30 location=0", records[1])
	}
}
