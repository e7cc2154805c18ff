package simcore

import "log"

// ConsoleReporter prints run progress to stdout via the standard log
// package, the way the teacher's bin/contagion/main.go logs generation
// progress directly with `log.Printf` rather than through a dedicated
// structured logger (SUPPLEMENTED FEATURES item 6, from the original's
// Reporters/ConsoleReporter.h).
type ConsoleReporter struct {
	jobNumber int
}

func NewConsoleReporter() *ConsoleReporter { return &ConsoleReporter{} }

func (r *ConsoleReporter) Initialize(jobNumber int, path string) error {
	r.jobNumber = jobNumber
	return nil
}

func (r *ConsoleReporter) BeforeRun() error {
	log.Printf("job %d: starting run", r.jobNumber)
	return nil
}

func (r *ConsoleReporter) BeginTimeStep(day int) error { return nil }

func (r *ConsoleReporter) MonthlyReport(day int) error {
	log.Printf("job %d: day %d report", r.jobNumber, day)
	return nil
}

func (r *ConsoleReporter) AfterRun() error {
	log.Printf("job %d: run complete", r.jobNumber)
	return nil
}
