package simcore

// DosingSchedule is one drug's dosing regimen within a Therapy: a
// per-drug-type number of days and a starting blood concentration fraction
// (spec section 6's therapy_db "list of drug ids, dosing schedule").
type DosingSchedule struct {
	DrugTypeID int
	Days       int
	StartValue float64
}

// Therapy is immutable once loaded (spec 4.6): a fixed set of drugs dosed
// together, e.g. an ACT combination.
type Therapy struct {
	ID       int
	Name     string
	Regimens []DosingSchedule
}

// Apply pushes one DrugInBlood entry per regimen onto the host, starting
// today. Called from the CLINICAL treatment branch of ProgressToClinical
// (spec 4.3 step 4).
func (t *Therapy) Apply(p *Person, day int) {
	for _, reg := range t.Regimens {
		p.AddDrug(NewDrugInBlood(reg.DrugTypeID, reg.Days, reg.StartValue, day))
	}
}

// TherapyDatabase is the loaded therapy_db config section: therapy id ->
// Therapy.
type TherapyDatabase struct {
	therapies map[int]*Therapy
}

// NewTherapyDatabase creates an empty database; entries are added via Add
// while loading config.
func NewTherapyDatabase() *TherapyDatabase {
	return &TherapyDatabase{therapies: make(map[int]*Therapy)}
}

// Add registers a therapy, keyed by its own ID.
func (db *TherapyDatabase) Add(t *Therapy) { db.therapies[t.ID] = t }

// Get looks up a therapy by id. ok is false for an unregistered id, which
// is a config-validation failure (spec 4.7), never expected past load time.
func (db *TherapyDatabase) Get(id int) (*Therapy, bool) {
	t, ok := db.therapies[id]
	return t, ok
}

// Len reports how many therapies are registered.
func (db *TherapyDatabase) Len() int { return len(db.therapies) }
