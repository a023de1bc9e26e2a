package evaluate

import (
	"path/filepath"
	"testing"
)

func TestTableGet(t *testing.T) {
	table := NewTable([]string{"Normal", "Disrupted"}, []string{"A", "B"})
	table.Cells[1][0] = 77

	got, ok := table.Get("Disrupted", "A")
	if !ok || got != 77 {
		t.Fatalf("expected 77, got %f (ok=%v)", got, ok)
	}

	if _, ok := table.Get("Disrupted", "C"); ok {
		t.Fatalf("expected miss for unknown plan")
	}
	if _, ok := table.Get("Foggy", "A"); ok {
		t.Fatalf("expected miss for unknown scenario")
	}
}

func TestWriteCSVBadPath(t *testing.T) {
	table := NewTable([]string{"Normal"}, []string{"A"})
	path := filepath.Join(t.TempDir(), "missing", "results.csv")
	if err := table.WriteCSV(path); err == nil {
		t.Fatalf("expected error for unwritable path")
	}
}
