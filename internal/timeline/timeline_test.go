package timeline

import (
	"math/rand"
	"testing"

	"github.com/perceptlab/toj-engine/internal/design"
)

func mainFactors() design.Factors {
	return design.Factors{
		ProbeLeft: []bool{true, false},
		Trust:     []string{design.TrustLevel, design.DistrustLevel},
		SOA:       []float64{-50, 50},
	}
}

func buildRecords(t *testing.T, f design.Factors, reps int) []design.TrialRecord {
	t.Helper()
	assets := []design.Asset{
		{File: "a.png", Trust: design.TrustLevel},
		{File: "b.png", Trust: design.DistrustLevel},
	}
	records, err := design.Build(f, reps, assets, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return records
}

func TestBlockBoundaryAfterOnePass(t *testing.T) {
	f := mainFactors()
	records := buildRecords(t, f, 2) // 16 records

	blockLen := ComputeBlockLength(f)
	if blockLen != 8 {
		t.Fatalf("block length = %d, want 8", blockLen)
	}

	steps, err := Assemble(records, blockLen)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	var pauses, trials, finals int
	for i, s := range steps {
		switch s.Type {
		case StepPause:
			pauses++
			// The single pause sits after the 8th trial (index 7).
			if i != 8 {
				t.Errorf("pause at step %d, want 8", i)
			}
			if s.BlockIndex != 1 || s.TotalBlocks != 2 {
				t.Errorf("pause block %d/%d, want 1/2", s.BlockIndex, s.TotalBlocks)
			}
		case StepTrial:
			trials++
		case StepFinal:
			finals++
			if !s.AcceptsAnyInput {
				t.Errorf("final screen must accept any input")
			}
		}
	}

	if trials != 16 || pauses != 1 || finals != 1 {
		t.Fatalf("got %d trials, %d pauses, %d finals; want 16/1/1", trials, pauses, finals)
	}
}

func TestTrialIndices(t *testing.T) {
	f := mainFactors()
	records := buildRecords(t, f, 2)

	steps, err := Assemble(records, 8)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	trialIdx := 0
	for _, s := range steps {
		if s.Type != StepTrial {
			continue
		}
		if s.TrialIndex != trialIdx {
			t.Errorf("trial index %d, want %d", s.TrialIndex, trialIdx)
		}
		wantBlock := trialIdx/8 + 1
		if s.BlockIndex != wantBlock {
			t.Errorf("trial %d: block %d, want %d", trialIdx, s.BlockIndex, wantBlock)
		}
		if s.TrialIndexInBlock != trialIdx%8 {
			t.Errorf("trial %d: in-block index %d, want %d", trialIdx, s.TrialIndexInBlock, trialIdx%8)
		}
		trialIdx++
	}
}

func TestSingleCellDesignHasOneBlock(t *testing.T) {
	f := design.Factors{
		ProbeLeft: []bool{true},
		Trust:     []string{design.TrustLevel},
		SOA:       []float64{0},
	}
	records := buildRecords(t, f, 1)
	if len(records) != 1 {
		t.Fatalf("expanded %d records, want 1", len(records))
	}

	steps, err := Assemble(records, ComputeBlockLength(f))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if len(steps) != 2 {
		t.Fatalf("got %d steps, want trial + final", len(steps))
	}
	if steps[0].Type != StepTrial || steps[1].Type != StepFinal {
		t.Fatalf("step order %v, %v; want trial, final", steps[0].Type, steps[1].Type)
	}
	if steps[1].TotalBlocks != 1 {
		t.Errorf("total blocks = %d, want 1", steps[1].TotalBlocks)
	}
	if !steps[1].AcceptsAnyInput {
		t.Errorf("final screen must accept any input")
	}
}

func TestNoPauseBeforeFinal(t *testing.T) {
	f := mainFactors()
	records := buildRecords(t, f, 1) // exactly one block

	steps, err := Assemble(records, ComputeBlockLength(f))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	for _, s := range steps {
		if s.Type == StepPause {
			t.Fatalf("single-block run must not contain a pause")
		}
	}
}

func TestAssembleSessionOrder(t *testing.T) {
	tutorialFactors := design.Factors{
		ProbeLeft: []bool{true, false},
		Trust:     []string{design.TrustLevel, design.DistrustLevel},
		SOA:       []float64{-100, 100},
	}
	assets := []design.Asset{
		{File: "a.png", Trust: design.TrustLevel},
		{File: "b.png", Trust: design.DistrustLevel},
	}
	rng := rand.New(rand.NewSource(2))

	tutorial, err := design.BuildTutorial(tutorialFactors, 10, assets, rng)
	if err != nil {
		t.Fatalf("BuildTutorial failed: %v", err)
	}
	main := buildRecords(t, mainFactors(), 2)

	steps, err := AssembleSession(tutorial, main, 8)
	if err != nil {
		t.Fatalf("AssembleSession failed: %v", err)
	}

	if steps[0].Type != StepCursor || steps[0].CursorOn {
		t.Fatalf("session must open by hiding the cursor")
	}
	last := steps[len(steps)-1]
	if last.Type != StepCursor || !last.CursorOn {
		t.Fatalf("session must close by restoring the cursor")
	}

	// Tutorial: exactly 10 trials, all flagged, then the gate.
	tutorialTrials := 0
	i := 1
	for ; steps[i].Type == StepTrial; i++ {
		if !steps[i].Tutorial {
			t.Fatalf("step %d: tutorial trial not flagged", i)
		}
		if steps[i].BlockIndex != 0 {
			t.Errorf("step %d: tutorial trial in block %d, want 0", i, steps[i].BlockIndex)
		}
		tutorialTrials++
	}
	if tutorialTrials != 10 {
		t.Fatalf("tutorial has %d trials, want 10", tutorialTrials)
	}
	if steps[i].Type != StepTutorialComplete {
		t.Fatalf("step %d is %s, want tutorial gate", i, steps[i].Type)
	}
	if steps[i].AcceptsAnyInput {
		t.Errorf("tutorial gate must require the designated continue action")
	}

	// Main trials continue the running index after the tutorial.
	next := 10
	for _, s := range steps[i+1:] {
		if s.Type != StepTrial {
			continue
		}
		if s.Tutorial {
			t.Fatalf("main-run trial flagged as tutorial")
		}
		if s.TrialIndex != next {
			t.Errorf("main trial index %d, want %d", s.TrialIndex, next)
		}
		next++
	}
	if next != 26 {
		t.Errorf("timeline holds %d trials total, want 26", next)
	}
}

func TestAssembleConfigurationErrors(t *testing.T) {
	records := buildRecords(t, mainFactors(), 1)

	if _, err := Assemble(records, 0); err == nil {
		t.Errorf("Assemble accepted block length 0")
	}
	if _, err := Assemble(nil, 8); err == nil {
		t.Errorf("Assemble accepted an empty record list")
	}
	if _, err := AssembleSession(nil, records, 8); err == nil {
		t.Errorf("AssembleSession accepted an empty tutorial")
	}
}
