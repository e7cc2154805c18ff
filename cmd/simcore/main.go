package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	simcore "github.com/oss-malaria/simcore"
)

func main() {
	var inputPath string
	flag.StringVar(&inputPath, "i", "", "path to the scenario YAML config")
	flag.StringVar(&inputPath, "input", "", "path to the scenario YAML config")

	var outputPath string
	flag.StringVar(&outputPath, "o", "report.db", "path for reporter output")

	jobNumber := flag.Int("j", 1, "job number, used to label this replicate's output")

	var reporterNames string
	flag.StringVar(&reporterNames, "r", "console", "comma-separated reporter list: console,csv,sqlite")

	var loadOnly bool
	flag.BoolVar(&loadOnly, "l", false, "load genotypes and exit")
	flag.BoolVar(&loadOnly, "load", false, "load genotypes and exit")

	var dumpMovement bool
	flag.BoolVar(&dumpMovement, "m", false, "dump the movement kernel and exit")
	flag.BoolVar(&dumpMovement, "mvmt", false, "dump the movement kernel and exit")

	auxPath := flag.String("aux", "", "optional legacy TOML drug/therapy tuning fragment")
	numCPU := flag.Int("threads", runtime.NumCPU(), "number of CPU threads")
	verbosity := flag.Int("v", 0, "log verbosity level")
	flag.Parse()

	if verbosity != nil && *verbosity > 0 {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	runtime.GOMAXPROCS(*numCPU)

	if inputPath == "" {
		log.Fatal("an input config is required: -i/--input <yaml>")
	}

	cfg, err := simcore.LoadConfig(inputPath)
	if err != nil {
		log.Fatal(err)
	}

	aux, err := simcore.LoadDrugAndTherapyAuxConfig(*auxPath)
	if err != nil {
		log.Fatal(err)
	}

	sim, err := simcore.NewSimulation(cfg, aux)
	if err != nil {
		log.Fatalf("error building simulation from config: %s", err)
	}

	if loadOnly {
		fmt.Printf("loaded %d genotypes\n", sim.Genotypes.Size())
		os.Exit(0)
	}
	if dumpMovement {
		for loc := uint32(0); loc < uint32(cfg.NumberOfLocations); loc++ {
			targets, weights := sim.Spatial.Targets(loc)
			fmt.Printf("location %d: targets=%v weights=%v\n", loc, targets, weights)
		}
		os.Exit(0)
	}

	for _, name := range strings.Split(reporterNames, ",") {
		switch strings.TrimSpace(name) {
		case "console":
			sim.Reporters.Register(simcore.NewConsoleReporter())
		case "csv":
			sim.Reporters.Register(simcore.NewCSVReporter(sim.Population, sim.Collector, sim.Calendar))
		case "sqlite":
			sim.Reporters.Register(simcore.NewSQLiteReporter(sim.Population, sim.Collector, sim.Calendar, sim.Genotypes, sim.Spatial, simcore.GranularityPixel))
		case "":
			// allow a trailing comma without failing the run
		default:
			log.Fatalf("%q is not a valid reporter name (console|csv|sqlite)", name)
		}
	}
	if err := sim.Reporters.Initialize(*jobNumber, outputPath); err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	log.Printf("starting instance %03d", *jobNumber)
	if err := sim.Run(); err != nil {
		log.Fatalf("simulation run failed: %s", err)
	}
	log.Printf("finished instance %03d in %s", *jobNumber, time.Since(start))
}
