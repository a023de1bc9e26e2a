package signalplan

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"
)

func TestSplitConservesCycle(t *testing.T) {
	for cycle := 20; cycle <= 120; cycle++ {
		for _, ratio := range []float64{0.3, 0.4, 0.5, 0.6, 0.7} {
			timing := Timing{CycleLength: cycle, NSGreenRatio: ratio}
			ns, ew := timing.Split()
			if ns < 0 || ew < 0 {
				t.Fatalf("cycle=%d ratio=%f: negative green time ns=%d ew=%d", cycle, ratio, ns, ew)
			}
			if ns+ew+2*YellowSeconds != cycle {
				t.Fatalf("cycle=%d ratio=%f: ns=%d + ew=%d + 6 != cycle", cycle, ratio, ns, ew)
			}
		}
	}
}

func TestSplitExamples(t *testing.T) {
	tests := []struct {
		cycle          int
		ratio          float64
		wantNS, wantEW int
	}{
		{60, 0.5, 27, 27},
		{21, 0.3, 4, 11},
		{120, 0.7, 79, 35},
		{20, 0.3, 4, 10},
	}
	for _, tt := range tests {
		ns, ew := Timing{CycleLength: tt.cycle, NSGreenRatio: tt.ratio}.Split()
		if ns != tt.wantNS || ew != tt.wantEW {
			t.Fatalf("cycle=%d ratio=%f: got ns=%d ew=%d, want ns=%d ew=%d",
				tt.cycle, tt.ratio, ns, ew, tt.wantNS, tt.wantEW)
		}
	}
}

func TestPhasesOrderAndStates(t *testing.T) {
	phases := Timing{CycleLength: 60, NSGreenRatio: 0.5}.Phases()
	if len(phases) != 4 {
		t.Fatalf("expected 4 phases, got %d", len(phases))
	}

	wantDurations := []int{27, 3, 27, 3}
	wantStates := []string{
		"GGggrrrrGGggrrrr",
		"yyyyrrrryyyyrrrr",
		"rrrrGGggrrrrGGgg",
		"rrrryyyyrrrryyyy",
	}
	for i, p := range phases {
		if p.Duration != wantDurations[i] {
			t.Fatalf("phase %d: expected duration %d, got %d", i, wantDurations[i], p.Duration)
		}
		if p.State != wantStates[i] {
			t.Fatalf("phase %d: expected state %s, got %s", i, wantStates[i], p.State)
		}
	}
}

func TestGenerateCoversGrid(t *testing.T) {
	doc, err := Generate(Timing{CycleLength: 60, NSGreenRatio: 0.5})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(doc.Logics) != GridSize*GridSize {
		t.Fatalf("expected %d programs, got %d", GridSize*GridSize, len(doc.Logics))
	}

	seen := make(map[string]bool)
	for _, logic := range doc.Logics {
		if logic.Type != "static" {
			t.Fatalf("intersection %s: expected static type, got %s", logic.ID, logic.Type)
		}
		if logic.ProgramID != ProgramID {
			t.Fatalf("intersection %s: expected program id %s, got %s", logic.ID, ProgramID, logic.ProgramID)
		}
		seen[logic.ID] = true
	}
	for _, id := range []string{"J_0_0", "J_1_1", "J_2_2", "J_0_2", "J_2_0"} {
		if !seen[id] {
			t.Fatalf("missing intersection %s", id)
		}
	}
}

func TestGenerateRejectsInvalidTiming(t *testing.T) {
	tests := []Timing{
		{CycleLength: 6, NSGreenRatio: 0.5},
		{CycleLength: 60, NSGreenRatio: 0},
		{CycleLength: 60, NSGreenRatio: 1},
		{CycleLength: 0, NSGreenRatio: 0.5},
		// Enough cycle time overall, but the split starves one direction
		{CycleLength: 10, NSGreenRatio: 0.1},
		{CycleLength: 7, NSGreenRatio: 0.5},
	}
	for _, timing := range tests {
		if _, err := Generate(timing); err == nil {
			t.Fatalf("expected error for timing %+v", timing)
		}
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.add.xml")
	pathB := filepath.Join(dir, "b.add.xml")

	timing := Timing{CycleLength: 90, NSGreenRatio: 0.6}
	if err := Write(timing, pathA); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := Write(timing, pathB); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	a, err := os.ReadFile(pathA)
	if err != nil {
		t.Fatalf("failed to read %s: %v", pathA, err)
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		t.Fatalf("failed to read %s: %v", pathB, err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("identical timings produced differing documents")
	}
}

func TestWriteProducesParseableXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.add.xml")
	if err := Write(Timing{CycleLength: 45, NSGreenRatio: 0.4}, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read plan: %v", err)
	}

	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("written plan does not parse: %v", err)
	}
	if len(doc.Logics) != 9 {
		t.Fatalf("expected 9 programs after round trip, got %d", len(doc.Logics))
	}
	if len(doc.Logics[0].Phases) != 4 {
		t.Fatalf("expected 4 phases after round trip, got %d", len(doc.Logics[0].Phases))
	}
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.add.xml")
	if err := Write(Timing{CycleLength: 60, NSGreenRatio: 0.5}, path); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := Write(Timing{CycleLength: 30, NSGreenRatio: 0.3}, path); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read plan: %v", err)
	}
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("plan does not parse: %v", err)
	}
	// 30 - 6 = 24 total green, floor(24*0.3) = 7
	if doc.Logics[0].Phases[0].Duration != 7 {
		t.Fatalf("expected overwritten NS green 7, got %d", doc.Logics[0].Phases[0].Duration)
	}
}
