package simcore

import (
	"fmt"

	"github.com/pkg/errors"
)

// Population event payloads. Each carries exactly what its EventKind's
// handler (simulation.go's dispatch switch) needs; built from the
// events[] config section by buildPopulationEvent, grounded on the
// original's PopulationEventBuilder.cpp switch-over-event-name (spec's
// SUPPLEMENTED FEATURES item 4).

type changeStrategyPayload struct{ StrategyID int }

type rotateStrategyPayload struct {
	Years            int
	FirstStrategyID  int
	SecondStrategyID int
}

type importationPeriodicallyPayload struct {
	Location   uint32
	GenotypeID uint64
	Count      int
	PeriodDays int
}

type districtImportationDailyPayload struct {
	District     int
	Locus        int
	MutantAllele int
	DailyRate    float64
}

type introduceMutantPayload struct {
	Location     uint32
	Locus        int
	AlleleValue  int
	FractionOfParasitePopulation float64
}

type singleRoundMDAPayload struct {
	FractionPopulationTargeted float64
	DaysToCompleteAllTreatments int
	TherapyID                  int
}

type turnMutationPayload struct{ Enabled bool }

type annualBetaUpdatePayload struct {
	Location uint32
	NewBeta  float64
}

type annualCoverageUpdatePayload struct{ Factor float64 }

type changeCirculationPercentPayload struct{ Percent float64 }

type updateBetaRasterPayload struct{ RasterPath string }

type changeTreatmentCoveragePayload struct {
	Location uint32
	UnderFive, OverFive float64
}

type modifyNestedMFTPayload struct {
	StrategyID  int
	PartitionKey int
	NewSubStrategyID int
}

// buildPopulationEvent interprets one events[] entry, returning the
// EventKind and payload to schedule it with, plus the day(s) to schedule
// it for. Unknown names are a ConfigError (spec 4.7: invalid configuration
// aborts before the first tick).
func buildPopulationEvent(calendar *Calendar, raw RawEvent) (EventKind, []int, interface{}, error) {
	info, _ := raw.Info["day"]
	switch raw.Name {
	case "change_treatment_strategy":
		day := toInt(raw.Info["day"])
		return EventChangeStrategy, []int{day}, &changeStrategyPayload{StrategyID: toInt(raw.Info["strategy_id"])}, nil
	case "rotate_strategy":
		day := toInt(raw.Info["day"])
		return EventRotateStrategy, []int{day}, &rotateStrategyPayload{
			Years:            toInt(raw.Info["years"]),
			FirstStrategyID:  toInt(raw.Info["first_strategy_id"]),
			SecondStrategyID: toInt(raw.Info["second_strategy_id"]),
		}, nil
	case "district_importation_daily_event":
		day := toInt(raw.Info["start_date"])
		return EventDistrictImportationDaily, []int{day}, &districtImportationDailyPayload{
			District:     toInt(raw.Info["district"]),
			Locus:        toInt(raw.Info["locus"]),
			MutantAllele: toInt(raw.Info["mutant_allele"]),
			DailyRate:    toFloat(raw.Info["daily_rate"]),
		}, nil
	case "introduce_mutant", "introduce_mutant_raster":
		day := toInt(raw.Info["day"])
		kind := EventIntroduceMutant
		if raw.Name == "introduce_mutant_raster" {
			kind = EventIntroduceMutantRaster
		}
		return kind, []int{day}, &introduceMutantPayload{
			Location:                      uint32(toInt(raw.Info["location"])),
			Locus:                         toInt(raw.Info["locus"]),
			AlleleValue:                   toInt(raw.Info["allele_value"]),
			FractionOfParasitePopulation: toFloat(raw.Info["fraction"]),
		}, nil
	case "introduce_aq_mutant":
		day := toInt(raw.Info["day"])
		return EventIntroduceAQMutant, []int{day}, &introduceMutantPayload{
			Location:    uint32(toInt(raw.Info["location"])),
			Locus:       toInt(raw.Info["locus"]),
			AlleleValue: toInt(raw.Info["allele_value"]),
		}, nil
	case "introduce_lumefantrine_mutant":
		day := toInt(raw.Info["day"])
		return EventIntroduceLumefantrineMutant, []int{day}, &introduceMutantPayload{
			Location:    uint32(toInt(raw.Info["location"])),
			Locus:       toInt(raw.Info["locus"]),
			AlleleValue: toInt(raw.Info["allele_value"]),
		}, nil
	case "introduce_plas2_copy":
		day := toInt(raw.Info["day"])
		return EventIntroducePlas2Copy, []int{day}, &introduceMutantPayload{
			Location:    uint32(toInt(raw.Info["location"])),
			Locus:       toInt(raw.Info["locus"]),
			AlleleValue: toInt(raw.Info["allele_value"]),
		}, nil
	case "single_round_mda":
		day := toInt(raw.Info["day"])
		return EventSingleRoundMDA, []int{day}, &singleRoundMDAPayload{
			FractionPopulationTargeted:  toFloat(raw.Info["fraction_population_targeted"]),
			DaysToCompleteAllTreatments: toInt(raw.Info["days_to_complete_all_treatments"]),
			TherapyID:                   toInt(raw.Info["therapy_id"]),
		}, nil
	case "turn_on_mutation":
		return EventTurnOnMutation, []int{toInt(raw.Info["day"])}, &turnMutationPayload{Enabled: true}, nil
	case "turn_off_mutation":
		return EventTurnOffMutation, []int{toInt(raw.Info["day"])}, &turnMutationPayload{Enabled: false}, nil
	case "annual_beta_update":
		return EventAnnualBetaUpdate, yearlyDays(calendar, toInt(raw.Info["start_day"]), toInt(raw.Info["end_day"])), &annualBetaUpdatePayload{
			Location: uint32(toInt(raw.Info["location"])),
			NewBeta:  toFloat(raw.Info["new_beta"]),
		}, nil
	case "annual_coverage_update":
		return EventAnnualCoverageUpdate, yearlyDays(calendar, toInt(raw.Info["start_day"]), toInt(raw.Info["end_day"])), &annualCoverageUpdatePayload{
			Factor: toFloat(raw.Info["factor"]),
		}, nil
	case "change_circulation_percent":
		return EventChangeCirculationPercent, []int{toInt(raw.Info["day"])}, &changeCirculationPercentPayload{
			Percent: toFloat(raw.Info["percent"]),
		}, nil
	case "update_beta_raster":
		return EventUpdateBetaRaster, []int{toInt(raw.Info["day"])}, &updateBetaRasterPayload{
			RasterPath: toString(raw.Info["raster_path"]),
		}, nil
	case "change_treatment_coverage":
		return EventChangeTreatmentCoverage, []int{toInt(raw.Info["day"])}, &changeTreatmentCoveragePayload{
			Location:  uint32(toInt(raw.Info["location"])),
			UnderFive: toFloat(raw.Info["under5"]),
			OverFive:  toFloat(raw.Info["over5"]),
		}, nil
	case "modify_nested_mft":
		return EventModifyNestedMFT, []int{toInt(raw.Info["day"])}, &modifyNestedMFTPayload{
			StrategyID:       toInt(raw.Info["strategy_id"]),
			PartitionKey:     toInt(raw.Info["partition_key"]),
			NewSubStrategyID: toInt(raw.Info["new_sub_strategy_id"]),
		}, nil
	case "importation_periodically":
		return EventImportationPeriodically, []int{toInt(raw.Info["start_day"])}, &importationPeriodicallyPayload{
			Location:   uint32(toInt(raw.Info["location"])),
			GenotypeID: uint64(toInt(raw.Info["genotype_id"])),
			Count:      toInt(raw.Info["count"]),
			PeriodDays: toInt(raw.Info["period_days"]),
		}, nil
	}
	_ = info
	return 0, nil, nil, errors.Wrapf(&ConfigError{Section: "events", Detail: "unrecognized event name"}, "%q", raw.Name)
}

// yearlyDays expands a start/end day range into one day per year, the
// schedule EventAnnualBetaUpdate/EventAnnualCoverageUpdate fire on.
func yearlyDays(calendar *Calendar, start, end int) []int {
	if end <= start {
		return []int{start}
	}
	var days []int
	for d := start; d <= end; d += 365 {
		days = append(days, d)
	}
	return days
}

// ScheduleConfiguredEvents walks Config.Events, builds each one, and files
// it on the scheduler against pop (the Population dispatcher), per spec
// section 6's events[] key.
func ScheduleConfiguredEvents(cfg *Config, calendar *Calendar, sched *Scheduler, pop *Population) error {
	for _, raw := range cfg.Events {
		kind, days, payload, err := buildPopulationEvent(calendar, raw)
		if err != nil {
			return err
		}
		for _, day := range days {
			sched.SchedulePopulation(pop, kind, day, payload)
		}
	}
	return nil
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
