package simcore

// GenotypeOccurrence is one genotype's footprint at one location, the row
// shape monthlygenomedata reports (spec section 6).
type GenotypeOccurrence struct {
	GenotypeID          uint64
	Occurrences         int
	ClinicalOccurrences int
	Occurrences0to5     int
	Occurrences2to10    int
	WeightedOccurrences float64
}

// GenotypeOccurrencesAtLocation scans every resident at location and tallies
// per-genotype carriage, used by SQLiteReporter to populate
// monthlygenomedata. maxAgeClass bounds the age-class index scan the same
// way PopulationAtLocation does.
func (pop *Population) GenotypeOccurrencesAtLocation(location uint32, maxAgeClass uint8) map[uint64]*GenotypeOccurrence {
	out := make(map[uint64]*GenotypeOccurrence)
	for state := Susceptible; state <= Clinical; state++ {
		for ac := uint8(0); ac <= maxAgeClass; ac++ {
			for _, p := range pop.Indices.ByLocationStateAge.Bucket(location, state, ac) {
				age := p.AgeYears()
				seen := make(map[uint64]bool)
				for _, c := range p.Clones {
					if seen[c.GenotypeID] {
						continue
					}
					seen[c.GenotypeID] = true
					o, ok := out[c.GenotypeID]
					if !ok {
						o = &GenotypeOccurrence{GenotypeID: c.GenotypeID}
						out[c.GenotypeID] = o
					}
					o.Occurrences++
					o.WeightedOccurrences += c.Infectiousness(pop.Levels)
					if state == Clinical {
						o.ClinicalOccurrences++
					}
					if age < 5 {
						o.Occurrences0to5++
					}
					if age >= 2 && age <= 10 {
						o.Occurrences2to10++
					}
				}
			}
		}
	}
	return out
}
