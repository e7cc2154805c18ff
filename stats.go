package simcore

// DataCollector accumulates the per-location event counters spec section
// 6's monthlysitedata schema reports (clinicalepisodes, treatments,
// treatmentfailures, nontreatment, under5/over5treatment): counters that
// are naturally cumulative-since-last-report rather than derivable from a
// Person snapshot (a person's lifetime ClinicalEpisodeCount doesn't tell a
// reporter how many episodes happened *this month*). Reporters call
// Snapshot to read the window and Reset to start the next one; simulation.go's
// event handlers call the Record* methods as the events they describe fire.
type DataCollector struct {
	locationCount int

	clinicalEpisodes    []int
	clinicalByAgeClass  []map[uint8]int
	treatments          []int
	treatmentFailures   []int
	nonTreatment        []int
	under5Treatment     []int
	over5Treatment      []int
	infectiousBites     []int
	deaths              []int
}

// NewDataCollector creates a collector sized to locationCount, all counters
// zeroed.
func NewDataCollector(locationCount int) *DataCollector {
	d := &DataCollector{
		locationCount:       locationCount,
		clinicalEpisodes:    make([]int, locationCount),
		clinicalByAgeClass:  make([]map[uint8]int, locationCount),
		treatments:          make([]int, locationCount),
		treatmentFailures:   make([]int, locationCount),
		nonTreatment:        make([]int, locationCount),
		under5Treatment:     make([]int, locationCount),
		over5Treatment:      make([]int, locationCount),
		infectiousBites:     make([]int, locationCount),
		deaths:              make([]int, locationCount),
	}
	for i := range d.clinicalByAgeClass {
		d.clinicalByAgeClass[i] = make(map[uint8]int)
	}
	return d
}

func (d *DataCollector) bounded(location uint32) int {
	idx := int(location)
	if idx < 0 || idx >= d.locationCount {
		return -1
	}
	return idx
}

// RecordClinicalEpisode increments both the location total and its
// age-class breakdown (SUPPLEMENTED FEATURES item 1).
func (d *DataCollector) RecordClinicalEpisode(location uint32, ageClass uint8) {
	if idx := d.bounded(location); idx >= 0 {
		d.clinicalEpisodes[idx]++
		d.clinicalByAgeClass[idx][ageClass]++
	}
}

func (d *DataCollector) RecordTreatment(location uint32, ageYears float64) {
	if idx := d.bounded(location); idx >= 0 {
		d.treatments[idx]++
		if ageYears < 5 {
			d.under5Treatment[idx]++
		} else {
			d.over5Treatment[idx]++
		}
	}
}

func (d *DataCollector) RecordTreatmentFailure(location uint32) {
	if idx := d.bounded(location); idx >= 0 {
		d.treatmentFailures[idx]++
	}
}

func (d *DataCollector) RecordNonTreatment(location uint32) {
	if idx := d.bounded(location); idx >= 0 {
		d.nonTreatment[idx]++
	}
}

func (d *DataCollector) RecordInfectiousBite(location uint32) {
	if idx := d.bounded(location); idx >= 0 {
		d.infectiousBites[idx]++
	}
}

func (d *DataCollector) RecordDeath(location uint32) {
	if idx := d.bounded(location); idx >= 0 {
		d.deaths[idx]++
	}
}

// LocationSnapshot is one location's reporting window, spec 6's
// monthlysitedata row shape (minus fields derived straight from Population
// at report time: population, pfpr*, infectedindividuals).
type LocationSnapshot struct {
	Location            uint32
	ClinicalEpisodes    int
	ClinicalByAgeClass  map[uint8]int
	Treatments          int
	TreatmentFailures   int
	NonTreatment        int
	Under5Treatment     int
	Over5Treatment      int
	InfectiousBites     int
	Deaths              int
}

// Snapshot returns the current window for every location without
// resetting it.
func (d *DataCollector) Snapshot() []LocationSnapshot {
	out := make([]LocationSnapshot, d.locationCount)
	for i := 0; i < d.locationCount; i++ {
		out[i] = LocationSnapshot{
			Location:           uint32(i),
			ClinicalEpisodes:   d.clinicalEpisodes[i],
			ClinicalByAgeClass: d.clinicalByAgeClass[i],
			Treatments:         d.treatments[i],
			TreatmentFailures:  d.treatmentFailures[i],
			NonTreatment:       d.nonTreatment[i],
			Under5Treatment:    d.under5Treatment[i],
			Over5Treatment:     d.over5Treatment[i],
			InfectiousBites:    d.infectiousBites[i],
			Deaths:             d.deaths[i],
		}
	}
	return out
}

// Reset zeros every counter, called after a reporter has flushed a
// reporting window.
func (d *DataCollector) Reset() {
	for i := 0; i < d.locationCount; i++ {
		d.clinicalEpisodes[i] = 0
		d.clinicalByAgeClass[i] = make(map[uint8]int)
		d.treatments[i] = 0
		d.treatmentFailures[i] = 0
		d.nonTreatment[i] = 0
		d.under5Treatment[i] = 0
		d.over5Treatment[i] = 0
		d.infectiousBites[i] = 0
		d.deaths[i] = 0
	}
}

// PopulationAtLocation counts living residents currently at a location, by
// scanning the location/state/age_class index (spec section 4.4's
// authoritative partition) rather than the dense all-index.
func (pop *Population) PopulationAtLocation(location uint32, maxAgeClass uint8) int {
	n := 0
	for state := Susceptible; state <= Clinical; state++ {
		for ac := uint8(0); ac <= maxAgeClass; ac++ {
			n += len(pop.Indices.ByLocationStateAge.Bucket(location, state, ac))
		}
	}
	return n
}

// PfPrAtLocation computes parasite-rate among residents in [minAge,maxAge)
// years: the fraction currently carrying at least one live clone.
func (pop *Population) PfPrAtLocation(location uint32, maxAgeClass uint8, minAge, maxAge float64) (infected, total int) {
	for state := Susceptible; state <= Clinical; state++ {
		for ac := uint8(0); ac <= maxAgeClass; ac++ {
			for _, p := range pop.Indices.ByLocationStateAge.Bucket(location, state, ac) {
				age := p.AgeYears()
				if age < minAge || age >= maxAge {
					continue
				}
				total++
				if !p.ClearedAllClones() {
					infected++
				}
			}
		}
	}
	return infected, total
}
