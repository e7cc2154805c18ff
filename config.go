package simcore

import (
	"time"

	"github.com/pkg/errors"
)

// Config is the root of the YAML-shaped parameter bundle spec section 6
// describes; read-only once loaded (C11). Grounded on the teacher's
// EvoEpiConfig: one struct per top-level TOML table there, one per
// top-level YAML key here, each with its own Validate().
type Config struct {
	StartingDate             time.Time `yaml:"starting_date"`
	EndingDate               time.Time `yaml:"ending_date"`
	StartOfComparisonPeriod  time.Time `yaml:"start_of_comparison_period"`
	RandomSeed               int64     `yaml:"random_seed"`

	NumberOfLocations    int     `yaml:"number_of_locations"`
	AgeStructure         []float64 `yaml:"age_structure"`

	SpatialInfo  SpatialConfig  `yaml:"spatial_info"`
	SeasonalInfo SeasonalConfig `yaml:"seasonal_info"`

	DrugDB     []DrugConfig     `yaml:"drug_db"`
	TherapyDB  []TherapyConfig  `yaml:"therapy_db"`
	StrategyDB []StrategyConfig `yaml:"strategy_db"`

	InitialStrategyID int `yaml:"initial_strategy_id"`

	GenotypeInfo GenotypeConfig `yaml:"genotype_info"`

	ParasiteDensityLevel ParasiteDensityLevels `yaml:"parasite_density_level"`
	ImmuneSystemInfo     ImmuneConfig          `yaml:"immune_system_information"`

	RelativeBitingInfo  RelativeLevelConfig `yaml:"relative_biting_info"`
	RelativeMovingInfo  RelativeLevelConfig `yaml:"relative_moving_info"`

	PrTreatmentUnder5 []float64 `yaml:"pr_treatment_under5"`
	PrTreatmentOver5  []float64 `yaml:"pr_treatment_over5"`

	Events []RawEvent `yaml:"events"`

	validated bool
}

// SpatialConfig names the raster files backing SpatialData (spec section
// 6); actual raster loading is done by spatial.go's LoadSpatialData.
type SpatialConfig struct {
	BetaRaster        string `yaml:"beta_raster"`
	PopulationRaster  string `yaml:"population_raster"`
	DistrictRaster    string `yaml:"district_raster"`
	TravelRaster      string `yaml:"travel_raster"`
	EcoclimaticRaster string `yaml:"ecoclimatic_raster"`
}

// SeasonalConfig is the per-location seasonal factor curve.
type SeasonalConfig struct {
	A1        []float64 `yaml:"a1"`
	B1        []float64 `yaml:"b1"`
	Phi       []float64 `yaml:"phi"`
	MinFactor float64   `yaml:"min_factor"`
}

// DrugConfig is one drug_db entry, mapped onto DrugType by
// config_loader.go.
type DrugConfig struct {
	ID              int     `yaml:"id"`
	Name            string  `yaml:"name"`
	HalfLife        float64 `yaml:"half_life"`
	MaxKillingRate  float64 `yaml:"max_killing_rate"`
	N               float64 `yaml:"n"`
	EC50            float64 `yaml:"ec50"`
	PMutation       float64 `yaml:"p_mutation"`
	AffectingLoci   []int   `yaml:"affecting_loci"`
	ResistantAllele []int   `yaml:"resistant_allele"`
}

// TherapyConfig is one therapy_db entry, mapped onto Therapy.
type TherapyConfig struct {
	ID       int               `yaml:"id"`
	Name     string            `yaml:"name"`
	Regimens []DosingScheduleConfig `yaml:"regimens"`
}

// DosingScheduleConfig is one drug's dosing within a TherapyConfig.
type DosingScheduleConfig struct {
	DrugID     int     `yaml:"drug_id"`
	Days       int     `yaml:"days"`
	StartValue float64 `yaml:"start_value"`
}

// StrategyConfig is one strategy_db entry. Kind selects which Strategy
// variant config_loader.go builds; the remaining fields are interpreted
// according to Kind.
type StrategyConfig struct {
	ID         int      `yaml:"id"`
	Kind       string   `yaml:"kind"` // sft|cycling|mft|mft_age_based|nested_mft|district_mft
	TherapyID  int      `yaml:"therapy_id"`
	TherapyIDs []int    `yaml:"therapy_ids"`
	Weights    []float64 `yaml:"weights"`
	Boundaries []float64 `yaml:"boundaries"`
	PeriodDays int      `yaml:"period_days"`
	Nested     map[string]int `yaml:"nested"` // partition key (location/district id as string) -> strategy id
	DefaultID  int      `yaml:"default_id"`
}

// GenotypeConfig is the genotype_info/loci_vector pair (spec section 6).
type GenotypeConfig struct {
	LociVector []int `yaml:"loci_vector"`
}

// ImmuneConfig is the immune_system_information section.
type ImmuneConfig struct {
	AcquireRate       float64 `yaml:"acquire_rate"`
	DecayRate         float64 `yaml:"decay_rate"`
	DueToSick         float64 `yaml:"due_to_sick"`
	InfantAcquireRate float64 `yaml:"infant_acquire_rate"`
	InfantDecayRate   float64 `yaml:"infant_decay_rate"`
	AgeOfMaturityDays uint32  `yaml:"age_of_maturity_days"`
}

// RelativeLevelConfig is the discrete level table backing relative_biting_info
// / relative_moving_info.
type RelativeLevelConfig struct {
	Levels []float64 `yaml:"levels"`
}

// RawEvent is one entry of the events[] config list before
// buildPopulationEvent (config_events.go) interprets it by name.
type RawEvent struct {
	Name string                 `yaml:"name"`
	Info map[string]interface{} `yaml:"info"`
}

// Validate checks the whole config bundle, mirroring the teacher's
// EvoEpiConfig.Validate: validate each section, then cross-section
// consistency (here: MFT-age-based boundary counts, drug/therapy id
// references).
func (c *Config) Validate() error {
	if !c.EndingDate.After(c.StartingDate) {
		return &ConfigError{Section: "starting_date/ending_date", Detail: "ending_date must be after starting_date"}
	}
	if c.NumberOfLocations <= 0 {
		return &ConfigError{Section: "number_of_locations", Detail: "must be positive"}
	}
	drugIDs := make(map[int]bool, len(c.DrugDB))
	for _, d := range c.DrugDB {
		if d.HalfLife <= 0 {
			return errors.Wrapf(&ConfigError{Section: "drug_db", Detail: "half_life must be positive"}, "drug id %d", d.ID)
		}
		drugIDs[d.ID] = true
	}
	therapyIDs := make(map[int]bool, len(c.TherapyDB))
	for _, t := range c.TherapyDB {
		for _, reg := range t.Regimens {
			if !drugIDs[reg.DrugID] {
				return errors.Wrapf(&ConfigError{Section: "therapy_db", Detail: "references unknown drug id"}, "therapy id %d, drug id %d", t.ID, reg.DrugID)
			}
		}
		therapyIDs[t.ID] = true
	}
	strategyIDs := make(map[int]bool, len(c.StrategyDB))
	for _, s := range c.StrategyDB {
		if err := s.validate(therapyIDs); err != nil {
			return err
		}
		strategyIDs[s.ID] = true
	}
	if !strategyIDs[c.InitialStrategyID] {
		return &ConfigError{Section: "initial_strategy_id", Detail: "references unknown strategy id"}
	}
	c.validated = true
	return nil
}

func (s *StrategyConfig) validate(therapyIDs map[int]bool) error {
	switch s.Kind {
	case "sft":
		if !therapyIDs[s.TherapyID] {
			return errors.Wrapf(&ConfigError{Section: "strategy_db", Detail: "sft references unknown therapy id"}, "strategy id %d", s.ID)
		}
	case "cycling", "mft":
		for _, id := range s.TherapyIDs {
			if !therapyIDs[id] {
				return errors.Wrapf(&ConfigError{Section: "strategy_db", Detail: "references unknown therapy id"}, "strategy id %d", s.ID)
			}
		}
	case "mft_age_based":
		if len(s.Boundaries) != len(s.TherapyIDs)-1 {
			return errors.Wrapf(&ConfigError{Section: "strategy_db", Detail: "boundaries must have therapies.len()-1 entries"}, "strategy id %d", s.ID)
		}
		for i := 1; i < len(s.Boundaries); i++ {
			if s.Boundaries[i] <= s.Boundaries[i-1] {
				return errors.Wrapf(&ConfigError{Section: "strategy_db", Detail: "boundaries must be strictly increasing"}, "strategy id %d", s.ID)
			}
		}
	case "nested_mft", "district_mft":
		if len(s.Nested) == 0 {
			return errors.Wrapf(&ConfigError{Section: "strategy_db", Detail: "nested/district strategy requires at least one partition entry"}, "strategy id %d", s.ID)
		}
	default:
		return errors.Wrapf(&ConfigError{Section: "strategy_db", Detail: "unrecognized strategy kind"}, "strategy id %d: %q", s.ID, s.Kind)
	}
	return nil
}
