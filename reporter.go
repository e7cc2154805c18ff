package simcore

// Reporter is the observer contract spec section 6 names: initialize,
// before_run, begin_time_step, monthly_report, after_run. Reporters read
// Population/indices/the genotype tree but never schedule events or mutate
// Person state (spec section 6's explicit restriction).
type Reporter interface {
	Initialize(jobNumber int, path string) error
	BeforeRun() error
	BeginTimeStep(day int) error
	MonthlyReport(day int) error
	AfterRun() error
}

// ReporterBus fans every lifecycle call out to its registered reporters in
// registration order, the observer fan-out C10 names. Grounded on the
// teacher's DataLogger interface (logger.go) generalized from a single
// logger to a slice of independent observers, since this spec wants several
// reporters active at once (console + sqlite, for instance).
type ReporterBus struct {
	reporters []Reporter
}

// NewReporterBus creates an empty bus; reporters are registered with
// Register before BeforeRun is called.
func NewReporterBus() *ReporterBus { return &ReporterBus{} }

// Register adds a reporter to the bus.
func (b *ReporterBus) Register(r Reporter) { b.reporters = append(b.reporters, r) }

// Initialize calls Initialize on every registered reporter, stopping at the
// first error (a reporter failing to open its output is a fatal
// configuration problem, matching spec 4.7's "abort before the first tick"
// posture for invalid configuration).
func (b *ReporterBus) Initialize(jobNumber int, path string) error {
	for _, r := range b.reporters {
		if err := r.Initialize(jobNumber, path); err != nil {
			return err
		}
	}
	return nil
}

func (b *ReporterBus) BeforeRun() error {
	for _, r := range b.reporters {
		if err := r.BeforeRun(); err != nil {
			return err
		}
	}
	return nil
}

func (b *ReporterBus) BeginTimeStep(day int) error {
	for _, r := range b.reporters {
		if err := r.BeginTimeStep(day); err != nil {
			return err
		}
	}
	return nil
}

func (b *ReporterBus) MonthlyReport(day int) error {
	for _, r := range b.reporters {
		if err := r.MonthlyReport(day); err != nil {
			return err
		}
	}
	return nil
}

func (b *ReporterBus) AfterRun() error {
	for _, r := range b.reporters {
		if err := r.AfterRun(); err != nil {
			return err
		}
	}
	return nil
}
