package simcore

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRasterFixture(t *testing.T, dir, name string, ncols, nrows int, rows []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := "ncols " + itoa(ncols) + "\n" +
		"nrows " + itoa(nrows) + "\n" +
		"xllcorner 0\nyllcorner 0\ncellsize 1\nNODATA_value -9999\n"
	for _, row := range rows {
		content += row + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write raster fixture: %v", err)
	}
	return path
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

func TestReadASCIIRasterParsesHeaderAndCells(t *testing.T) {
	dir := t.TempDir()
	path := writeRasterFixture(t, dir, "beta.asc", 2, 2, []string{"1.5 2.5", "3.5 4.5"})

	r, err := readASCIIRaster(path)
	if err != nil {
		t.Fatalf("readASCIIRaster() = %v, want nil", err)
	}
	if r.ncols != 2 || r.nrows != 2 {
		t.Fatalf("dimensions = %d x %d, want 2 x 2", r.ncols, r.nrows)
	}
	if r.cellAt(0) != 1.5 || r.cellAt(1) != 2.5 || r.cellAt(2) != 3.5 || r.cellAt(3) != 4.5 {
		t.Fatalf("cell values not parsed in row-major order: %+v", r.values)
	}
	if r.cellAt(99) != r.nodata {
		t.Fatalf("out-of-range cell should return nodata")
	}
}

func TestReadASCIIRasterRejectsTruncatedRows(t *testing.T) {
	dir := t.TempDir()
	path := writeRasterFixture(t, dir, "bad.asc", 2, 2, []string{"1 2"}) // missing second row

	if _, err := readASCIIRaster(path); err == nil {
		t.Fatalf("readASCIIRaster() should reject a raster missing declared rows")
	}
}

func TestLoadSpatialDataWithoutRastersDefaultsToZeroBeta(t *testing.T) {
	cfg := &Config{NumberOfLocations: 3}
	sd, err := LoadSpatialData(cfg)
	if err != nil {
		t.Fatalf("LoadSpatialData() = %v, want nil", err)
	}
	for loc := uint32(0); loc < 3; loc++ {
		if sd.Beta(loc) != 0 {
			t.Fatalf("Beta(%d) = %f, want 0 with no beta_raster configured", loc, sd.Beta(loc))
		}
		if sd.DistrictLookup(loc) != 0 {
			t.Fatalf("DistrictLookup(%d) = %d, want 0 with no district_raster configured", loc, sd.DistrictLookup(loc))
		}
	}
	if sd.CirculationPercent() != 1.0 {
		t.Fatalf("CirculationPercent() = %f, want 1.0 default", sd.CirculationPercent())
	}
}

func TestLoadSpatialDataReadsBetaRaster(t *testing.T) {
	dir := t.TempDir()
	path := writeRasterFixture(t, dir, "beta.asc", 2, 1, []string{"0.1 0.2"})
	cfg := &Config{NumberOfLocations: 2, SpatialInfo: SpatialConfig{BetaRaster: path}}

	sd, err := LoadSpatialData(cfg)
	if err != nil {
		t.Fatalf("LoadSpatialData() = %v, want nil", err)
	}
	if sd.Beta(0) != 0.1 || sd.Beta(1) != 0.2 {
		t.Fatalf("beta values not loaded from raster: %f, %f", sd.Beta(0), sd.Beta(1))
	}
}

func TestSpatialDataSetBetaAndCirculationPercent(t *testing.T) {
	cfg := &Config{NumberOfLocations: 1}
	sd, _ := LoadSpatialData(cfg)

	sd.SetBeta(0, 5)
	if sd.Beta(0) != 5 {
		t.Fatalf("SetBeta did not take effect, Beta(0) = %f", sd.Beta(0))
	}
	sd.SetCirculationPercent(0.25)
	if sd.CirculationPercent() != 0.25 {
		t.Fatalf("SetCirculationPercent did not take effect, got %f", sd.CirculationPercent())
	}
}

func TestSpatialDataSeasonalFactorClampedToMinFactor(t *testing.T) {
	cfg := &Config{
		NumberOfLocations: 1,
		SeasonalInfo: SeasonalConfig{
			A1:        []float64{-10},
			B1:        []float64{0},
			Phi:       []float64{0},
			MinFactor: 0.3,
		},
	}
	sd, _ := LoadSpatialData(cfg)
	if got := sd.SeasonalFactor(0, 0); got != 0.3 {
		t.Fatalf("SeasonalFactor() = %f, want clamped to min_factor 0.3", got)
	}
}

func TestSpatialDataTargetsGravityKernelFavorsCloserAndMorePopulous(t *testing.T) {
	dir := t.TempDir()
	// 2x2 grid: location 1 is much more populous than locations 2 and 3.
	path := writeRasterFixture(t, dir, "pop.asc", 2, 2, []string{"1 1000", "1 1"})
	cfg := &Config{NumberOfLocations: 4, SpatialInfo: SpatialConfig{PopulationRaster: path}}
	sd, err := LoadSpatialData(cfg)
	if err != nil {
		t.Fatalf("LoadSpatialData() = %v, want nil", err)
	}

	targets, weights := sd.Targets(0)
	if len(targets) != 3 || len(weights) != 3 {
		t.Fatalf("Targets(0) = %v, %v; want 3 entries (every other location)", targets, weights)
	}
	var weightFor1 float64
	for i, loc := range targets {
		if loc == 1 {
			weightFor1 = weights[i]
		}
	}
	for i, loc := range targets {
		if loc != 1 && weights[i] >= weightFor1 {
			t.Fatalf("location 1 (population 1000) should outweigh location %d, got %f vs %f", loc, weightFor1, weights[i])
		}
	}
}

func TestSpatialDataTargetsOutOfRangeIsEmpty(t *testing.T) {
	cfg := &Config{NumberOfLocations: 1}
	sd, _ := LoadSpatialData(cfg)
	targets, weights := sd.Targets(99)
	if targets != nil || weights != nil {
		t.Fatalf("Targets(99) should be empty for an out-of-range location")
	}
}
