package simcore

import "log"

// Simulation wires together every component named in spec section 2 and
// drives the tick loop described in section 4.1's data-flow summary:
// Scheduler ticks -> drain population queue -> drain individual queue ->
// Population.daily_update (clones/drugs/immunity, then biting, then
// movement) -> ReporterBus.begin_time_step -> end-of-month rollup.
type Simulation struct {
	Config     *Config
	Calendar   *Calendar
	Scheduler  *Scheduler
	Random     *Random
	Population *Population
	DrugDB     *DrugDatabase
	TherapyDB  *TherapyDatabase
	Strategies *StrategyDatabase
	Coverage   *TreatmentCoverage
	Spatial    *SpatialData
	Genotypes  *GenotypeTree
	Collector  *DataCollector
	Reporters  *ReporterBus

	totalTime int
}

// NewSimulation builds every component from a loaded, validated Config and
// wires the cross-references a single Population needs (DrugDB, Genotypes,
// Beta) before any event is scheduled. Mirrors the teacher's
// EvoEpiConfig.NewSimulation factory.
func NewSimulation(cfg *Config, aux *DrugAuxConfig) (*Simulation, error) {
	totalTime := int(cfg.EndingDate.Sub(cfg.StartingDate).Hours() / 24)
	calendar := NewCalendar(cfg.StartingDate)
	sched := NewScheduler(calendar, totalTime)
	random := NewRandom(cfg.RandomSeed)

	spatial, err := LoadSpatialData(cfg)
	if err != nil {
		return nil, err
	}

	drugDB := BuildDrugDatabase(cfg)
	if aux != nil {
		aux.ApplyTo(drugDB)
	}
	therapyDB := BuildTherapyDatabase(cfg)
	strategyDB, err := BuildStrategyDatabase(cfg, spatial.DistrictLookup)
	if err != nil {
		return nil, err
	}
	coverage := BuildTreatmentCoverage(cfg)
	genotypes := BuildGenotypeTree(cfg, drugDB)

	pop := NewPopulation(cfg.ParasiteDensityLevel, uint32(cfg.NumberOfLocations))
	pop.DrugDB = drugDB
	pop.Genotypes = genotypes
	pop.Beta = spatial
	pop.AgeClassBoundaries = cfg.AgeStructure
	pop.RelativeBitingLevels = cfg.RelativeBitingInfo.Levels
	pop.RelativeMovingLevels = cfg.RelativeMovingInfo.Levels

	if err := ScheduleConfiguredEvents(cfg, calendar, sched, pop); err != nil {
		return nil, err
	}

	sim := &Simulation{
		Config:     cfg,
		Calendar:   calendar,
		Scheduler:  sched,
		Random:     random,
		Population: pop,
		DrugDB:     drugDB,
		TherapyDB:  therapyDB,
		Strategies: strategyDB,
		Coverage:   coverage,
		Spatial:    spatial,
		Genotypes:  genotypes,
		Collector:  NewDataCollector(cfg.NumberOfLocations),
		Reporters:  NewReporterBus(),
		totalTime:  totalTime,
	}
	return sim, nil
}

// Run drives the tick loop to completion, calling ReporterBus hooks at the
// points spec section 6 names: before_run once, begin_time_step every day,
// monthly_report on each month boundary, after_run once at the end.
//
// Only a ConfigError aborts a run (spec section 7); BeforeRun's error is
// one, since a reporter failing to open its output is a pre-tick setup
// failure. Once ticking has started, a reporter error is a ReporterIOError
// ("storage write failure") - logged and swallowed so the model keeps
// running even though that report is lost.
func (s *Simulation) Run() error {
	if err := s.Reporters.BeforeRun(); err != nil {
		return err
	}
	lastMonth := -1
	for !s.Scheduler.Finished() {
		s.Scheduler.Tick(s.dispatch)
		day := s.Scheduler.CurrentDay()

		s.Population.DailyUpdate(day, s.Random)
		s.Population.BitingStep(day, s.Scheduler, s.Random)
		s.Population.MovementStep(s.Spatial, s.Spatial.CirculationPercent(), s.Random)

		if err := s.Reporters.BeginTimeStep(day); err != nil {
			log.Printf("reporter error on day %d begin_time_step: %v", day, err)
		}
		month := s.Calendar.DateAt(day).Month()
		if int(month) != lastMonth {
			lastMonth = int(month)
			if err := s.Reporters.MonthlyReport(day); err != nil {
				log.Printf("reporter error on day %d monthly_report: %v", day, err)
			}
		}
	}
	if err := s.Reporters.AfterRun(); err != nil {
		log.Printf("reporter error on after_run: %v", err)
	}
	return nil
}

// dispatch is the single dispatch function the spec's Design Notes call
// for, replacing the C++ original's virtual Event::execute: one switch over
// EventKind, each case asserting out its kind-specific payload.
func (s *Simulation) dispatch(ev *Event) {
	switch ev.Kind {
	case EventBirthday:
		s.onBirthday(ev)
	case EventUpdateEveryKDays:
		s.onUpdateEveryKDays(ev)
	case EventMoveParasiteToBlood:
		s.onMoveParasiteToBlood(ev)
	case EventProgressToClinical:
		s.onProgressToClinical(ev)
	case EventEndClinicalByNoTreatment:
		s.onEndClinical(ev)
	case EventEndClinicalDueToDrugResistance:
		s.onEndClinical(ev)
	case EventEndClinical:
		s.onEndClinical(ev)
	case EventTestTreatmentFailure:
		s.onTestTreatmentFailure(ev)
	case EventReportTreatmentFailureDeath:
		s.onReportTreatmentFailureDeath(ev)
	case EventChangeStrategy:
		s.onChangeStrategy(ev)
	case EventRotateStrategy:
		s.onRotateStrategy(ev)
	case EventImportationPeriodically:
		s.onImportationPeriodically(ev)
	case EventDistrictImportationDaily:
		s.onDistrictImportationDaily(ev)
	case EventIntroduceMutant, EventIntroduceMutantRaster, EventIntroduceAQMutant, EventIntroduceLumefantrineMutant, EventIntroducePlas2Copy:
		s.onIntroduceMutant(ev)
	case EventSingleRoundMDA:
		s.onSingleRoundMDA(ev)
	case EventTurnOnMutation, EventTurnOffMutation:
		s.onTurnMutation(ev)
	case EventAnnualBetaUpdate:
		s.onAnnualBetaUpdate(ev)
	case EventAnnualCoverageUpdate:
		s.onAnnualCoverageUpdate(ev)
	case EventChangeCirculationPercent:
		s.onChangeCirculationPercent(ev)
	case EventUpdateBetaRaster:
		s.onUpdateBetaRaster(ev)
	case EventChangeTreatmentCoverage:
		s.onChangeTreatmentCoverage(ev)
	case EventModifyNestedMFT:
		s.onModifyNestedMFT(ev)
	case EventMatureGametocyte:
		// No core behaviour beyond marking the clone infectious; infectiousness
		// is already derived continuously from density in Infectiousness(),
		// so this event exists for downstream reporters that key off its
		// firing rather than for any state mutation here.
	}
}

func (s *Simulation) person(ev *Event) *Person {
	if ev.OwnerKind != OwnerIndividual {
		return nil
	}
	return s.Population.Get(ev.OwnerID)
}

func (s *Simulation) onBirthday(ev *Event) {
	p := s.person(ev)
	if p == nil || p.HostState == Dead {
		return
	}
	s.Population.Birthday(p)
	s.Scheduler.ScheduleIndividual(p, p.ID, EventBirthday, s.Scheduler.CurrentDay()+365, nil)
}

const updateEveryKDaysPeriod = 30

func (s *Simulation) onUpdateEveryKDays(ev *Event) {
	p := s.person(ev)
	if p == nil || p.HostState == Dead {
		return
	}
	if len(s.Population.RelativeBitingLevels) > 0 {
		p.BitingLevelIndex = uint16(s.Random.Intn(len(s.Population.RelativeBitingLevels)))
		p.InnateRelativeBitingRate = s.Population.RelativeBitingLevels[p.BitingLevelIndex]
	}
	if len(s.Population.RelativeMovingLevels) > 0 {
		s.Population.SetMovingLevel(p, uint16(s.Random.Intn(len(s.Population.RelativeMovingLevels))))
	}
	s.Scheduler.ScheduleIndividual(p, p.ID, EventUpdateEveryKDays, s.Scheduler.CurrentDay()+updateEveryKDaysPeriod, nil)
}

// onMoveParasiteToBlood implements the EXPOSED -> ASYMPTOMATIC transition
// (spec 4.3): add a clone at the from-liver density and probabilistically
// schedule ProgressToClinical.
func (s *Simulation) onMoveParasiteToBlood(ev *Event) {
	p := s.person(ev)
	if p == nil || p.HostState == Dead || p.HostState != Exposed {
		return
	}
	payload, _ := ev.Payload.(*moveParasiteToBloodPayload)
	if payload == nil {
		return
	}
	clone := NewParasiteClone(payload.GenotypeID, s.Population.Levels.LogFromLiver, s.Scheduler.CurrentDay())
	p.AddClone(clone)
	s.Population.SetState(p, Asymptomatic)

	progressionMin, progressionMax := 10, 25 // days; from original's progression-window constants
	day := s.Scheduler.CurrentDay() + progressionMin + s.Random.Intn(progressionMax-progressionMin+1)
	s.Scheduler.ScheduleIndividual(p, p.ID, EventProgressToClinical, day, &progressToClinicalPayload{GenotypeID: payload.GenotypeID})
}

type progressToClinicalPayload struct{ GenotypeID uint64 }

// onProgressToClinical is the canonical hard event from spec 4.3, steps
// 1-4 of ProgressToClinicalEvent.execute implemented in order.
func (s *Simulation) onProgressToClinical(ev *Event) {
	p := s.person(ev)
	if p == nil || p.HostState == Dead {
		return
	}
	payload, _ := ev.Payload.(*progressToClinicalPayload)
	if payload == nil || !p.HasClone(payload.GenotypeID) {
		return // step 1: causing clone already removed by immune clearance
	}
	if p.HostState == Clinical {
		// step 2: already clinical; this clone just moves to clearance.
		for _, c := range p.Clones {
			if c.GenotypeID == payload.GenotypeID {
				c.UpdateFn = UpdateImmunityClearance
			}
		}
		return
	}

	// step 3.
	density := s.Random.Flat(s.Population.Levels.LogClinicalFrom, s.Population.Levels.LogClinicalTo)
	s.Population.SetState(p, Clinical)
	p.CancelEventsOfKindExcept(s.Scheduler, EventProgressToClinical, ev.ID)
	for _, c := range p.Clones {
		if c.GenotypeID == payload.GenotypeID {
			c.UpdateFn = UpdateClinical
			c.LastUpdateLog10Density = density
		} else {
			c.UpdateFn = UpdateImmunityClearance
		}
	}
	p.ClinicalEpisodeCount++
	s.Collector.RecordClinicalEpisode(p.Location, p.AgeClassIndex)

	day := s.Scheduler.CurrentDay()

	// step 4.
	u := s.Random.Uniform()
	treated := u <= s.Coverage.ProbabilityTreated(p.Location, p.AgeYears())
	if treated {
		s.treatPerson(p, day)
		s.Collector.RecordTreatment(p.Location, p.AgeYears())
	} else {
		s.Collector.RecordNonTreatment(p.Location)
		deathProbabilityUntreated := 0.005
		if s.Random.Uniform() < deathProbabilityUntreated {
			s.killPerson(p, day)
			return
		}
		s.Scheduler.ScheduleIndividual(p, p.ID, EventEndClinicalByNoTreatment, day+endClinicalByNoTreatmentDays, nil)
	}
}

const endClinicalByNoTreatmentDays = 14
const testTreatmentFailureDays = 28

func (s *Simulation) treatPerson(p *Person, day int) {
	strategy := s.Strategies.Active()
	var therapy *Therapy
	if mft, ok := strategy.(*MFTStrategy); ok {
		id := mft.PickTherapyID(s.Random)
		therapy, _ = s.TherapyDB.Get(id)
	} else if strategy != nil {
		therapy = strategy.GetTherapy(p, day, s.TherapyDB)
	}
	if therapy == nil {
		s.Scheduler.ScheduleIndividual(p, p.ID, EventEndClinicalByNoTreatment, day+endClinicalByNoTreatmentDays, nil)
		return
	}
	therapy.Apply(p, day)
	p.CurrentTherapyID = therapy.ID
	p.currentTherapySet = true
	p.TreatmentCount++

	deathProbabilityTreated := 0.001
	if s.Random.Uniform() < deathProbabilityTreated {
		s.killPerson(p, day)
		return
	}
	s.Scheduler.ScheduleIndividual(p, p.ID, EventEndClinical, day+7, nil)
	s.Scheduler.ScheduleIndividual(p, p.ID, EventTestTreatmentFailure, day+testTreatmentFailureDays, nil)
}

// onEndClinical handles EndClinical, EndClinicalByNoTreatment and
// EndClinicalDueToDrugResistance alike: all three move CLINICAL back to
// ASYMPTOMATIC with every surviving clone switched to immunity clearance
// (spec 4.3).
func (s *Simulation) onEndClinical(ev *Event) {
	p := s.person(ev)
	if p == nil || p.HostState != Clinical {
		return
	}
	for _, c := range p.Clones {
		c.UpdateFn = UpdateImmunityClearance
	}
	s.Population.SetState(p, Asymptomatic)
}

// onTestTreatmentFailure checks whether the host is still clinical
// testTreatmentFailureDays after treatment: if so, the treatment failed.
// Which clones the host carries is not checked (SUPPLEMENTED FEATURES relies on original's
// drug-resistance accounting).
func (s *Simulation) onTestTreatmentFailure(ev *Event) {
	p := s.person(ev)
	if p == nil || p.HostState == Dead {
		return
	}
	if p.HostState == Clinical {
		p.TreatmentFailures++
		s.Collector.RecordTreatmentFailure(p.Location)
		s.Scheduler.ScheduleIndividual(p, p.ID, EventEndClinicalDueToDrugResistance, s.Scheduler.CurrentDay()+endClinicalByNoTreatmentDays, nil)
	}
}

func (s *Simulation) killPerson(p *Person, day int) {
	p.CancelAllEventsExcept(s.Scheduler, 0)
	s.Population.SetState(p, Dead)
	s.Collector.RecordDeath(p.Location)
	p.clearAll()
	s.Scheduler.ScheduleIndividual(p, p.ID, EventReportTreatmentFailureDeath, day+1, nil)
}

func (s *Simulation) onReportTreatmentFailureDeath(ev *Event) {
	// Intentionally a no-op beyond firing: death accounting already happened
	// in killPerson via Collector.RecordDeath at the moment of death. This
	// event exists to give reporters a delayed-accounting hook distinct from
	// the death instant itself, per spec 4.3's "schedule ReportTreatmentFailureDeath
	// for delayed accounting".
}

func (s *Simulation) onChangeStrategy(ev *Event) {
	payload, _ := ev.Payload.(*changeStrategyPayload)
	if payload == nil {
		return
	}
	s.Strategies.SetActive(payload.StrategyID)
}

func (s *Simulation) onRotateStrategy(ev *Event) {
	payload, _ := ev.Payload.(*rotateStrategyPayload)
	if payload == nil {
		return
	}
	day := s.Scheduler.CurrentDay()
	s.Strategies.SetActive(payload.SecondStrategyID)
	revertDay := day + payload.Years*365
	s.Scheduler.SchedulePopulation(s.Population, EventChangeStrategy, revertDay+1,
		&changeStrategyPayload{StrategyID: payload.FirstStrategyID})
}

func (s *Simulation) onImportationPeriodically(ev *Event) {
	payload, _ := ev.Payload.(*importationPeriodicallyPayload)
	if payload == nil {
		return
	}
	day := s.Scheduler.CurrentDay()
	s.importCases(payload.Location, payload.GenotypeID, payload.Count, day)
	s.Scheduler.SchedulePopulation(s.Population, EventImportationPeriodically, day+payload.PeriodDays, payload)
}

// importCases seeds up to count susceptible residents at location with an
// infective bite carrying genotypeID, the helper behind
// ImportationPeriodically.
func (s *Simulation) importCases(location uint32, genotypeID uint64, count int, day int) {
	maxAgeClass := uint8(len(s.Population.AgeClassBoundaries))
	var candidates []*Person
	for ac := uint8(0); ac <= maxAgeClass; ac++ {
		candidates = append(candidates, s.Population.Indices.ByLocationStateAge.Bucket(location, Susceptible, ac)...)
	}
	if len(candidates) == 0 {
		return
	}
	if count > len(candidates) {
		count = len(candidates)
	}
	perm := s.Random.Perm(len(candidates))
	for i := 0; i < count; i++ {
		p := candidates[perm[i]]
		s.Population.SetState(p, Exposed)
		s.Scheduler.ScheduleIndividual(p, p.ID, EventMoveParasiteToBlood, day+LiverDurationDays,
			&moveParasiteToBloodPayload{GenotypeID: genotypeID})
	}
}

// onDistrictImportationDaily implements the literal end-to-end scenario in
// spec section 8 item 4: each day, a Poisson(daily_rate) number of carriers
// in the district, drawn with replacement, are (re)seeded with the mutant
// allele at locus on their first clone.
func (s *Simulation) onDistrictImportationDaily(ev *Event) {
	payload, _ := ev.Payload.(*districtImportationDailyPayload)
	if payload == nil {
		return
	}
	day := s.Scheduler.CurrentDay()
	count := s.Random.Poisson(payload.DailyRate)
	if count > 0 {
		maxAgeClass := uint8(len(s.Population.AgeClassBoundaries))
		var carriers []*Person
		for loc := uint32(0); loc < s.Population.LocationCount; loc++ {
			if s.Spatial == nil || s.Spatial.DistrictLookup(loc) != payload.District {
				continue
			}
			for state := Asymptomatic; state <= Clinical; state++ {
				for ac := uint8(0); ac <= maxAgeClass; ac++ {
					carriers = append(carriers, s.Population.Indices.ByLocationStateAge.Bucket(loc, state, ac)...)
				}
			}
		}
		mutantGenotype := s.Genotypes.IntroduceMutant(1, payload.Locus, payload.MutantAllele)
		for i := 0; i < count && len(carriers) > 0; i++ {
			if p := carriers[s.Random.Intn(len(carriers))]; len(p.Clones) > 0 {
				p.Clones[0].GenotypeID = mutantGenotype
			}
		}
	}
	s.Scheduler.SchedulePopulation(s.Population, EventDistrictImportationDaily, day+1, payload)
}

func (s *Simulation) onIntroduceMutant(ev *Event) {
	payload, _ := ev.Payload.(*introduceMutantPayload)
	if payload == nil {
		return
	}
	mutantGenotype := s.Genotypes.IntroduceMutant(1, payload.Locus, payload.AlleleValue)
	maxAgeClass := uint8(len(s.Population.AgeClassBoundaries))
	var carriers []*Person
	for state := Asymptomatic; state <= Clinical; state++ {
		for ac := uint8(0); ac <= maxAgeClass; ac++ {
			carriers = append(carriers, s.Population.Indices.ByLocationStateAge.Bucket(payload.Location, state, ac)...)
		}
	}
	target := int(payload.FractionOfParasitePopulation * float64(len(carriers)))
	if target <= 0 && len(carriers) > 0 {
		target = 1
	}
	if target > len(carriers) {
		target = len(carriers)
	}
	perm := s.Random.Perm(len(carriers))
	for i := 0; i < target; i++ {
		p := carriers[perm[i]]
		if len(p.Clones) > 0 {
			p.Clones[0].GenotypeID = mutantGenotype
		}
	}
}

func (s *Simulation) onSingleRoundMDA(ev *Event) {
	payload, _ := ev.Payload.(*singleRoundMDAPayload)
	if payload == nil {
		return
	}
	// A rescheduled individual follow-up treats only that one person; the
	// original population-filed event does the fan-out below.
	if ev.OwnerKind == OwnerIndividual {
		p := s.person(ev)
		if p == nil || p.HostState == Dead {
			return
		}
		if therapy, ok := s.TherapyDB.Get(payload.TherapyID); ok {
			therapy.Apply(p, s.Scheduler.CurrentDay())
		}
		p.TreatmentCount++
		s.Collector.RecordTreatment(p.Location, p.AgeYears())
		return
	}

	all := s.Population.Indices.All.All()
	living := make([]*Person, 0, len(all))
	for _, p := range all {
		if p.HostState != Dead {
			living = append(living, p)
		}
	}
	target := int(payload.FractionPopulationTargeted * float64(len(living)))
	if target > len(living) {
		target = len(living)
	}
	perm := s.Random.Perm(len(living))
	day := s.Scheduler.CurrentDay()
	days := payload.DaysToCompleteAllTreatments
	if days <= 0 {
		days = 1
	}
	therapy, _ := s.TherapyDB.Get(payload.TherapyID)
	for i := 0; i < target; i++ {
		p := living[perm[i]]
		treatDay := day + s.Random.Intn(days)
		if treatDay == day {
			if therapy != nil {
				therapy.Apply(p, day)
			}
			p.TreatmentCount++
			s.Collector.RecordTreatment(p.Location, p.AgeYears())
		} else {
			s.Scheduler.ScheduleIndividual(p, p.ID, EventSingleRoundMDA, treatDay,
				&singleRoundMDAPayload{FractionPopulationTargeted: 1, DaysToCompleteAllTreatments: 1, TherapyID: payload.TherapyID})
		}
	}
}

func (s *Simulation) onTurnMutation(ev *Event) {
	payload, _ := ev.Payload.(*turnMutationPayload)
	if payload == nil {
		return
	}
	s.Genotypes.SetMutationEnabled(payload.Enabled)
}

func (s *Simulation) onAnnualBetaUpdate(ev *Event) {
	payload, _ := ev.Payload.(*annualBetaUpdatePayload)
	if payload == nil || s.Spatial == nil {
		return
	}
	s.Spatial.SetBeta(payload.Location, payload.NewBeta)
}

func (s *Simulation) onAnnualCoverageUpdate(ev *Event) {
	payload, _ := ev.Payload.(*annualCoverageUpdatePayload)
	if payload == nil {
		return
	}
	s.Coverage.ScaleAll(payload.Factor)
}

func (s *Simulation) onChangeCirculationPercent(ev *Event) {
	payload, _ := ev.Payload.(*changeCirculationPercentPayload)
	if payload == nil || s.Spatial == nil {
		return
	}
	s.Spatial.SetCirculationPercent(payload.Percent)
}

func (s *Simulation) onUpdateBetaRaster(ev *Event) {
	payload, _ := ev.Payload.(*updateBetaRasterPayload)
	if payload == nil {
		return
	}
	raster, err := readASCIIRaster(payload.RasterPath)
	if err != nil {
		return // ConfigError here would be a mid-run abort; spec 4.7 only
		// mandates abort-before-first-tick for bad config, so a bad raster
		// named mid-run by a population event is treated as a no-op update.
	}
	for loc := uint32(0); loc < s.Population.LocationCount; loc++ {
		s.Spatial.SetBeta(loc, raster.cellAt(loc))
	}
}

func (s *Simulation) onChangeTreatmentCoverage(ev *Event) {
	payload, _ := ev.Payload.(*changeTreatmentCoveragePayload)
	if payload == nil {
		return
	}
	s.Coverage.SetUnderFive(payload.Location, payload.UnderFive)
	s.Coverage.SetOverFive(payload.Location, payload.OverFive)
}

func (s *Simulation) onModifyNestedMFT(ev *Event) {
	payload, _ := ev.Payload.(*modifyNestedMFTPayload)
	if payload == nil {
		return
	}
	strat, ok := s.Strategies.Get(payload.StrategyID)
	if !ok {
		return
	}
	nested, ok := strat.(*NestedMFTStrategy)
	if !ok {
		return
	}
	sub, ok := s.Strategies.Get(payload.NewSubStrategyID)
	if !ok {
		return
	}
	nested.ByPartition[payload.PartitionKey] = sub
}
