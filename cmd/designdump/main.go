// designdump expands an experiment configuration into its full trial
// design and session timeline and prints them as JSON. Useful for
// checking counterbalancing and block boundaries before running
// participants.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/perceptlab/toj-engine/internal/config"
	"github.com/perceptlab/toj-engine/internal/design"
	"github.com/perceptlab/toj-engine/internal/timeline"
)

type dump struct {
	ExperimentID string               `json:"experiment_id"`
	BlockLength  int                  `json:"block_length"`
	TotalBlocks  int                  `json:"total_blocks"`
	Tutorial     []design.TrialRecord `json:"tutorial"`
	Main         []design.TrialRecord `json:"main"`
	Timeline     []timeline.Step      `json:"timeline,omitempty"`
}

func main() {
	configPath := flag.String("config", "experiments/template/experiment.yaml", "path to experiment.yaml")
	seed := flag.Int64("seed", 1, "random seed for the shuffle")
	withTimeline := flag.Bool("timeline", false, "include the assembled session timeline")
	flag.Parse()

	cfg, err := config.LoadExperimentConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load %s: %v", *configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid experiment config: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))

	tutorial, err := design.BuildTutorial(cfg.TutorialFactors(), cfg.Design.TutorialLength, cfg.Assets, rng)
	if err != nil {
		log.Fatalf("tutorial design failed: %v", err)
	}

	mainRun, err := design.Build(cfg.MainFactors(), cfg.Design.Repetitions, cfg.Assets, rng)
	if err != nil {
		log.Fatalf("main design failed: %v", err)
	}

	blockLen := timeline.ComputeBlockLength(cfg.MainFactors())
	out := dump{
		ExperimentID: cfg.Experiment.ID,
		BlockLength:  blockLen,
		TotalBlocks:  timeline.ComputeTotalBlocks(len(mainRun), blockLen),
		Tutorial:     tutorial,
		Main:         mainRun,
	}

	if *withTimeline {
		steps, err := timeline.AssembleSession(tutorial, mainRun, blockLen)
		if err != nil {
			log.Fatalf("timeline assembly failed: %v", err)
		}
		out.Timeline = steps
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
