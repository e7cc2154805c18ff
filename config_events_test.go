package simcore

import (
	"testing"
	"time"
)

func TestBuildPopulationEventSingleRoundMDA(t *testing.T) {
	cal := NewCalendar(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	raw := RawEvent{
		Name: "single_round_mda",
		Info: map[string]interface{}{
			"day":                             50,
			"fraction_population_targeted":    0.5,
			"days_to_complete_all_treatments": 14,
			"therapy_id":                      1,
		},
	}
	kind, days, payload, err := buildPopulationEvent(cal, raw)
	if err != nil {
		t.Fatalf("buildPopulationEvent() = %v, want nil", err)
	}
	if kind != EventSingleRoundMDA {
		t.Fatalf("kind = %v, want EventSingleRoundMDA", kind)
	}
	if len(days) != 1 || days[0] != 50 {
		t.Fatalf("days = %v, want [50]", days)
	}
	p, ok := payload.(*singleRoundMDAPayload)
	if !ok {
		t.Fatalf("payload is %T, want *singleRoundMDAPayload", payload)
	}
	if p.FractionPopulationTargeted != 0.5 || p.DaysToCompleteAllTreatments != 14 || p.TherapyID != 1 {
		t.Fatalf("payload mismatch: %+v", p)
	}
}

func TestBuildPopulationEventUnrecognizedName(t *testing.T) {
	cal := NewCalendar(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	_, _, _, err := buildPopulationEvent(cal, RawEvent{Name: "not_a_real_event"})
	if err == nil {
		t.Fatalf("buildPopulationEvent should reject an unrecognized event name")
	}
}

func TestBuildPopulationEventDistrictImportationDaily(t *testing.T) {
	cal := NewCalendar(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	raw := RawEvent{
		Name: "district_importation_daily_event",
		Info: map[string]interface{}{
			"start_date":    10,
			"district":      2,
			"locus":         0,
			"mutant_allele": 1,
			"daily_rate":    0.25,
		},
	}
	kind, days, payload, err := buildPopulationEvent(cal, raw)
	if err != nil {
		t.Fatalf("buildPopulationEvent() = %v, want nil", err)
	}
	if kind != EventDistrictImportationDaily || len(days) != 1 || days[0] != 10 {
		t.Fatalf("kind/days = %v, %v; want EventDistrictImportationDaily, [10]", kind, days)
	}
	p := payload.(*districtImportationDailyPayload)
	if p.District != 2 || p.DailyRate != 0.25 {
		t.Fatalf("payload mismatch: %+v", p)
	}
}

func TestYearlyDaysExpandsRange(t *testing.T) {
	cal := NewCalendar(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	days := yearlyDays(cal, 100, 800)
	want := []int{100, 465}
	if len(days) != len(want) {
		t.Fatalf("yearlyDays(100,800) = %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("yearlyDays(100,800)[%d] = %d, want %d", i, days[i], want[i])
		}
	}
}

func TestYearlyDaysSingleDayWhenEndNotAfterStart(t *testing.T) {
	cal := NewCalendar(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	days := yearlyDays(cal, 50, 50)
	if len(days) != 1 || days[0] != 50 {
		t.Fatalf("yearlyDays(50,50) = %v, want [50]", days)
	}
}

func TestScheduleConfiguredEventsFilesAgainstPopulation(t *testing.T) {
	cal := NewCalendar(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	sched := NewScheduler(cal, 100)
	pop := NewPopulation(ParasiteDensityLevels{}, 1)
	cfg := &Config{
		Events: []RawEvent{
			{Name: "change_circulation_percent", Info: map[string]interface{}{"day": 5, "percent": 0.1}},
		},
	}

	if err := ScheduleConfiguredEvents(cfg, cal, sched, pop); err != nil {
		t.Fatalf("ScheduleConfiguredEvents() = %v, want nil", err)
	}

	var fired []EventKind
	for i := 0; i < 5; i++ {
		sched.Tick(func(ev *Event) { fired = append(fired, ev.Kind) })
	}
	if len(fired) != 1 || fired[0] != EventChangeCirculationPercent {
		t.Fatalf("fired = %v, want one EventChangeCirculationPercent on day 5", fired)
	}
}
