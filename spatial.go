package simcore

import (
	"bufio"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// asciiRaster is a minimal ESRI ASCII grid (.asc) reader: a six-line header
// (ncols, nrows, xllcorner, yllcorner, cellsize, NODATA_value) followed by
// nrows rows of ncols whitespace-separated values. No library in the
// retrieved corpus touches geospatial raster formats, and the format is a
// handful of fixed header keys plus a dense numeric grid, so this is
// implemented on bufio/strconv rather than reached for an external
// dependency (documented in DESIGN.md).
type asciiRaster struct {
	ncols, nrows int
	cellsize     float64
	nodata       float64
	values       [][]float64
}

func readASCIIRaster(path string) (*asciiRaster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening raster %q", path)
	}
	defer f.Close()

	r := &asciiRaster{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024*16)
	header := map[string]float64{}
	for len(header) < 6 && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			return nil, &ConfigError{Section: "spatial_info", Detail: "malformed raster header in " + path}
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing raster header value in %q", path)
		}
		header[strings.ToLower(fields[0])] = v
	}
	r.ncols = int(header["ncols"])
	r.nrows = int(header["nrows"])
	r.cellsize = header["cellsize"]
	r.nodata = header["nodata_value"]
	if r.ncols <= 0 || r.nrows <= 0 {
		return nil, &ConfigError{Section: "spatial_info", Detail: "raster " + path + " has non-positive dimensions"}
	}
	r.values = make([][]float64, r.nrows)
	for row := 0; row < r.nrows; row++ {
		if !scanner.Scan() {
			return nil, &ConfigError{Section: "spatial_info", Detail: "raster " + path + " truncated before row " + strconv.Itoa(row)}
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) != r.ncols {
			return nil, &ConfigError{Section: "spatial_info", Detail: "raster " + path + " row width mismatch"}
		}
		vals := make([]float64, r.ncols)
		for c, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing raster cell in %q", path)
			}
			vals[c] = v
		}
		r.values[row] = vals
	}
	return r, nil
}

// cellAt returns the value at a 0-based row-major location index, or nodata
// if location is out of range.
func (r *asciiRaster) cellAt(location uint32) float64 {
	if r.ncols == 0 {
		return r.nodata
	}
	row := int(location) / r.ncols
	col := int(location) % r.ncols
	if row >= r.nrows {
		return r.nodata
	}
	return r.values[row][col]
}

// SpatialData bundles the raster-derived spatial inputs named in spec
// section 6: beta/population/district/travel/ecoclimatic rasters, plus the
// district lookup and distance-kernel adjacency they imply. Implements
// BetaProvider and MovementKernel for Population's biting/movement steps.
type SpatialData struct {
	locationCount      int
	beta               []float64
	population         []int
	district           []int
	seasonalA1, seasonalB1, seasonalPhi []float64
	seasonalMinFactor  float64
	circulationPercent float64
	adjacency          [][]uint32
	adjacencyWeights   [][]float64
}

// LoadSpatialData reads every raster named in cfg.SpatialInfo and builds
// the derived adjacency kernel. A raster path left empty is skipped and its
// field stays at zero-value, matching the "spatial inputs are optional
// beyond the gridded Config fields" reading of spec section 6.
func LoadSpatialData(cfg *Config) (*SpatialData, error) {
	sd := &SpatialData{
		locationCount:      cfg.NumberOfLocations,
		circulationPercent: 1.0,
		seasonalMinFactor:  cfg.SeasonalInfo.MinFactor,
		seasonalA1:         cfg.SeasonalInfo.A1,
		seasonalB1:         cfg.SeasonalInfo.B1,
		seasonalPhi:        cfg.SeasonalInfo.Phi,
	}

	if cfg.SpatialInfo.BetaRaster != "" {
		raster, err := readASCIIRaster(cfg.SpatialInfo.BetaRaster)
		if err != nil {
			return nil, err
		}
		sd.beta = flattenNonNodata(raster)
	} else {
		sd.beta = make([]float64, sd.locationCount)
	}

	if cfg.SpatialInfo.PopulationRaster != "" {
		raster, err := readASCIIRaster(cfg.SpatialInfo.PopulationRaster)
		if err != nil {
			return nil, err
		}
		flat := flattenNonNodata(raster)
		sd.population = make([]int, len(flat))
		for i, v := range flat {
			sd.population[i] = int(v)
		}
	}

	if cfg.SpatialInfo.DistrictRaster != "" {
		raster, err := readASCIIRaster(cfg.SpatialInfo.DistrictRaster)
		if err != nil {
			return nil, err
		}
		flat := flattenNonNodata(raster)
		sd.district = make([]int, len(flat))
		for i, v := range flat {
			sd.district[i] = int(v)
		}
	} else {
		sd.district = make([]int, sd.locationCount)
	}

	sd.buildGravityKernel()
	return sd, nil
}

func flattenNonNodata(r *asciiRaster) []float64 {
	out := make([]float64, 0, r.ncols*r.nrows)
	for _, row := range r.values {
		out = append(out, row...)
	}
	return out
}

// buildGravityKernel derives a simple gravity-model adjacency: every other
// location is a candidate target weighted by population / distance^2,
// where distance is estimated from the row/column grid position implied by
// location index ordering (grounded on spec 4.5.3's "gravity-or-distance
// kernel" phrasing; the original's exact kernel lives in
// original_source/MovementModel and is not reproduced verbatim here).
func (sd *SpatialData) buildGravityKernel() {
	n := sd.locationCount
	sd.adjacency = make([][]uint32, n)
	sd.adjacencyWeights = make([][]float64, n)
	cols := 1
	if n > 0 {
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	}
	for i := 0; i < n; i++ {
		var targets []uint32
		var weights []float64
		ri, ci := i/cols, i%cols
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			rj, cj := j/cols, j%cols
			dr, dc := float64(ri-rj), float64(ci-cj)
			dist2 := dr*dr + dc*dc
			if dist2 == 0 {
				dist2 = 1
			}
			pop := 1.0
			if j < len(sd.population) && sd.population[j] > 0 {
				pop = float64(sd.population[j])
			}
			targets = append(targets, uint32(j))
			weights = append(weights, pop/dist2)
		}
		sd.adjacency[i] = targets
		sd.adjacencyWeights[i] = weights
	}
}

// Beta implements BetaProvider.
func (sd *SpatialData) Beta(location uint32) float64 {
	if int(location) < len(sd.beta) {
		return sd.beta[location]
	}
	return 0
}

// SeasonalFactor implements BetaProvider, a min-clamped sinusoid per
// location (spec section 6's seasonal_info curve).
func (sd *SpatialData) SeasonalFactor(location uint32, day int) float64 {
	idx := int(location)
	if idx >= len(sd.seasonalA1) {
		return 1
	}
	a1, b1, phi := sd.seasonalA1[idx], sd.seasonalB1[idx], sd.seasonalPhi[idx]
	v := 1 + a1*math.Cos(2*math.Pi*(float64(day)/365.0-phi)) + b1
	if v < sd.seasonalMinFactor {
		return sd.seasonalMinFactor
	}
	return v
}

// CirculationPercent implements BetaProvider.
func (sd *SpatialData) CirculationPercent() float64 { return sd.circulationPercent }

// SetCirculationPercent is the effect of EventChangeCirculationPercent.
func (sd *SpatialData) SetCirculationPercent(p float64) { sd.circulationPercent = p }

// SetBeta is the effect of EventAnnualBetaUpdate/EventUpdateBetaRaster for
// one location.
func (sd *SpatialData) SetBeta(location uint32, value float64) {
	if int(location) < len(sd.beta) {
		sd.beta[location] = value
	}
}

// Targets implements MovementKernel.
func (sd *SpatialData) Targets(from uint32) ([]uint32, []float64) {
	if int(from) >= len(sd.adjacency) {
		return nil, nil
	}
	return sd.adjacency[from], sd.adjacencyWeights[from]
}

// DistrictLookup returns district_lookup(location) -> district, required by
// District-MFT strategies and district-granularity reporters.
func (sd *SpatialData) DistrictLookup(location uint32) int {
	if int(location) < len(sd.district) {
		return sd.district[location]
	}
	return 0
}

// Population returns the raster-derived population count at a location, or
// 0 if no population_raster was configured.
func (sd *SpatialData) Population(location uint32) int {
	if int(location) < len(sd.population) {
		return sd.population[location]
	}
	return 0
}
