package simcore

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteReporterWritesMonthlyTables(t *testing.T) {
	levels := ParasiteDensityLevels{LogCured: 0, LogDetectable: 1}
	pop := NewPopulation(levels, 1)
	infected := pop.AddNewPerson(0, 365*4, nil)
	infected.AddClone(NewParasiteClone(1, 5, 0))
	pop.SetState(infected, Asymptomatic)

	collector := NewDataCollector(1)
	collector.RecordClinicalEpisode(0, 0)
	collector.RecordTreatment(0, 10)

	cal := NewCalendar(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	genotypes := NewGenotypeTree([]int{2})

	reporter := NewSQLiteReporter(pop, collector, cal, genotypes, nil, GranularityPixel)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.sqlite3")
	if err := reporter.Initialize(1, path); err != nil {
		t.Fatalf("Initialize() = %v, want nil", err)
	}
	if err := reporter.MonthlyReport(30); err != nil {
		t.Fatalf("MonthlyReport() = %v, want nil", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to reopen written sqlite database: %v", err)
	}
	defer db.Close()

	var siteRows int
	if err := db.QueryRow("select count(*) from monthlysitedata").Scan(&siteRows); err != nil {
		t.Fatalf("querying monthlysitedata: %v", err)
	}
	if siteRows != 1 {
		t.Fatalf("monthlysitedata rows = %d, want 1", siteRows)
	}

	var genotypeRows int
	if err := db.QueryRow("select count(*) from genotype").Scan(&genotypeRows); err != nil {
		t.Fatalf("querying genotype: %v", err)
	}
	if genotypeRows != genotypes.Size() {
		t.Fatalf("genotype rows = %d, want %d (one per known genotype)", genotypeRows, genotypes.Size())
	}

	// A second monthly report must not re-insert already-persisted genotypes.
	if err := reporter.MonthlyReport(60); err != nil {
		t.Fatalf("second MonthlyReport() = %v, want nil", err)
	}
	if err := db.QueryRow("select count(*) from genotype").Scan(&genotypeRows); err != nil {
		t.Fatalf("re-querying genotype: %v", err)
	}
	if genotypeRows != genotypes.Size() {
		t.Fatalf("genotype rows after second flush = %d, want unchanged %d", genotypeRows, genotypes.Size())
	}
	if err := reporter.AfterRun(); err != nil {
		t.Fatalf("AfterRun() = %v, want nil", err)
	}
}
