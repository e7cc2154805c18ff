package simcore

// MovementKernel supplies the target-location distribution for circulating
// residents out of a given location (spec 4.5.3's "gravity-or-distance
// kernel"). Implemented by SpatialData (spatial.go) from the travel_raster
// and population_raster config inputs.
type MovementKernel interface {
	// Targets returns candidate destination locations and their relative
	// weights for travelers departing from.
	Targets(from uint32) (locations []uint32, weights []float64)
}

// MovementStep implements spec 4.5.3: for each location, a circulation
// fraction of residents move to a location drawn from kernel, with the
// location change routed through SetLocation so every index stays correct.
// circulationPercent is BetaProvider.CirculationPercent(), threaded in
// explicitly here rather than read off pop.Beta so ChangeCirculationPercent
// population events can override it ad hoc for a single step's call.
func (pop *Population) MovementStep(kernel MovementKernel, circulationPercent float64, r *Random) {
	if kernel == nil || circulationPercent <= 0 {
		return
	}
	for _, p := range pop.Indices.All.All() {
		if p.HostState == Dead {
			continue
		}
		if r.Uniform() >= circulationPercent {
			continue
		}
		locations, weights := kernel.Targets(p.Location)
		if len(locations) == 0 {
			continue
		}
		idx := r.Categorical(weights)
		target := locations[idx]
		if target == p.Location {
			continue
		}
		pop.SetLocation(p, target)
	}
}
