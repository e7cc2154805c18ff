package simcore

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads and validates the primary YAML scenario file (spec
// section 6), mirroring the teacher's LoadSingleHostConfig/
// LoadEvoEpiConfig pattern (one decode call, then Validate()).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	cfg := new(Config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "validating config %q", path)
	}
	return cfg, nil
}

// DrugAuxConfig is the legacy TOML drug/therapy tuning fragment
// (SPEC_FULL.md's DOMAIN STACK entry for BurntSushi/toml): a secondary,
// optional config operators can iterate on without touching the full YAML
// scenario file. Only overrides killing-rate/EC50/N parameters; ids must
// already exist in the primary config's drug_db.
type DrugAuxConfig struct {
	Overrides []DrugAuxOverride `toml:"drug_override"`
}

// DrugAuxOverride overrides one drug's PK/PD tuning parameters.
type DrugAuxOverride struct {
	ID             int     `toml:"id"`
	MaxKillingRate float64 `toml:"max_killing_rate"`
	N              float64 `toml:"n"`
	EC50           float64 `toml:"ec50"`
}

// LoadDrugAndTherapyAuxConfig reads the optional TOML tuning fragment. A
// missing file is not an error: the aux config is optional, the primary
// YAML drug_db section is always sufficient on its own.
func LoadDrugAndTherapyAuxConfig(path string) (*DrugAuxConfig, error) {
	if path == "" {
		return &DrugAuxConfig{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &DrugAuxConfig{}, nil
	}
	aux := new(DrugAuxConfig)
	if _, err := toml.DecodeFile(path, aux); err != nil {
		return nil, errors.Wrapf(err, "parsing drug aux config %q", path)
	}
	return aux, nil
}

// ApplyTo overrides matching entries of db with the aux tuning values.
func (aux *DrugAuxConfig) ApplyTo(db *DrugDatabase) {
	for _, o := range aux.Overrides {
		if d, ok := db.Get(o.ID); ok {
			d.MaxKillingRate = o.MaxKillingRate
			d.N = o.N
			d.EC50 = o.EC50
		}
	}
}

// BuildDrugDatabase maps Config.DrugDB onto a DrugDatabase.
func BuildDrugDatabase(cfg *Config) *DrugDatabase {
	db := NewDrugDatabase()
	for _, d := range cfg.DrugDB {
		db.Add(&DrugType{
			ID:              d.ID,
			Name:            d.Name,
			HalfLife:        d.HalfLife,
			MaxKillingRate:  d.MaxKillingRate,
			N:               d.N,
			EC50:            d.EC50,
			MutationProb:    d.PMutation,
			AffectingLoci:   d.AffectingLoci,
			ResistantAllele: d.ResistantAllele,
		})
	}
	return db
}

// BuildTherapyDatabase maps Config.TherapyDB onto a TherapyDatabase.
func BuildTherapyDatabase(cfg *Config) *TherapyDatabase {
	db := NewTherapyDatabase()
	for _, t := range cfg.TherapyDB {
		therapy := &Therapy{ID: t.ID, Name: t.Name}
		for _, r := range t.Regimens {
			therapy.Regimens = append(therapy.Regimens, DosingSchedule{
				DrugTypeID: r.DrugID,
				Days:       r.Days,
				StartValue: r.StartValue,
			})
		}
		db.Add(therapy)
	}
	return db
}

// BuildStrategyDatabase maps Config.StrategyDB onto a StrategyDatabase,
// dispatching on StrategyConfig.Kind the way the teacher's
// intrahostModelConfig.CreateModel dispatches on a model-name string.
func BuildStrategyDatabase(cfg *Config, districtLookup func(uint32) int) (*StrategyDatabase, error) {
	db := NewStrategyDatabase()
	for _, s := range cfg.StrategyDB {
		strat, err := buildStrategy(s, db, districtLookup)
		if err != nil {
			return nil, err
		}
		db.Add(strat)
	}
	db.SetActive(cfg.InitialStrategyID)
	return db, nil
}

func buildStrategy(s StrategyConfig, db *StrategyDatabase, districtLookup func(uint32) int) (Strategy, error) {
	switch s.Kind {
	case "sft":
		return &SFTStrategy{StrategyID: s.ID, TherapyID: s.TherapyID}, nil
	case "cycling":
		return NewCyclingStrategy(s.ID, s.TherapyIDs, s.PeriodDays), nil
	case "mft":
		return &MFTStrategy{StrategyID: s.ID, TherapyIDs: s.TherapyIDs, Weights: s.Weights}, nil
	case "mft_age_based":
		return &MFTAgeBasedStrategy{StrategyID: s.ID, TherapyIDs: s.TherapyIDs, Boundaries: s.Boundaries}, nil
	case "nested_mft":
		nested := &NestedMFTStrategy{StrategyID: s.ID, Partitioner: ByLocationPartitioner, ByPartition: make(map[int]Strategy)}
		for key, subID := range s.Nested {
			sub, ok := db.Get(subID)
			if !ok {
				return nil, &ConfigError{Section: "strategy_db", Detail: "nested sub-strategy id not yet registered; declare sub-strategies before the strategy that nests them"}
			}
			k, err := parseIntKey(key)
			if err != nil {
				return nil, err
			}
			nested.ByPartition[k] = sub
		}
		if sub, ok := db.Get(s.DefaultID); ok {
			nested.Default = sub
		}
		return nested, nil
	case "district_mft":
		nested := &NestedMFTStrategy{StrategyID: s.ID, Partitioner: ByDistrictPartitioner(districtLookup), ByPartition: make(map[int]Strategy)}
		for key, subID := range s.Nested {
			sub, ok := db.Get(subID)
			if !ok {
				return nil, &ConfigError{Section: "strategy_db", Detail: "nested sub-strategy id not yet registered; declare sub-strategies before the strategy that nests them"}
			}
			k, err := parseIntKey(key)
			if err != nil {
				return nil, err
			}
			nested.ByPartition[k] = sub
		}
		if sub, ok := db.Get(s.DefaultID); ok {
			nested.Default = sub
		}
		return nested, nil
	}
	return nil, &ConfigError{Section: "strategy_db", Detail: "unrecognized strategy kind " + s.Kind}
}

func parseIntKey(s string) (int, error) {
	var n int
	var neg bool
	i := 0
	if len(s) > 0 && s[0] == '-' {
		neg = true
		i = 1
	}
	if i >= len(s) {
		return 0, &ConfigError{Section: "strategy_db", Detail: "nested partition key must be an integer: " + s}
	}
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, &ConfigError{Section: "strategy_db", Detail: "nested partition key must be an integer: " + s}
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

// BuildTreatmentCoverage maps Config.PrTreatmentUnder5/Over5 onto a
// TreatmentCoverage table.
func BuildTreatmentCoverage(cfg *Config) *TreatmentCoverage {
	cov := NewTreatmentCoverage(cfg.NumberOfLocations)
	for loc, rate := range cfg.PrTreatmentUnder5 {
		cov.SetUnderFive(uint32(loc), rate)
	}
	for loc, rate := range cfg.PrTreatmentOver5 {
		cov.SetOverFive(uint32(loc), rate)
	}
	return cov
}

// BuildGenotypeTree maps Config.GenotypeInfo onto a fresh GenotypeTree and
// wires each drug's mutation probability onto the loci it affects.
func BuildGenotypeTree(cfg *Config, drugs *DrugDatabase) *GenotypeTree {
	tree := NewGenotypeTree(cfg.GenotypeInfo.LociVector)
	for _, d := range cfg.DrugDB {
		for _, locus := range d.AffectingLoci {
			tree.SetMutationProbability(locus, d.PMutation)
		}
	}
	return tree
}
