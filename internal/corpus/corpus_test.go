package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeDataset(t, `[
		{"input": "where to surf", "output": "Puraran Beach.", "title": "Surfing", "topic": "beaches", "summary_offline": "Puraran has surf."},
		{"input": "", "output": "orphan answer"},
		{"input": "orphan question", "output": ""},
		{"input": "where to eat", "output": "Virac has eateries."}
	]`)

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Load() returned %d records, want 2", len(records))
	}
	if records[0].Question != "where to surf" {
		t.Errorf("first record question = %q", records[0].Question)
	}
	if records[1].Title != "General Info" || records[1].Topic != "General" {
		t.Errorf("defaults not applied: title=%q topic=%q", records[1].Title, records[1].Topic)
	}
}

func TestLoadAllEntriesInvalid(t *testing.T) {
	path := writeDataset(t, `[{"input": "", "output": ""}]`)
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail when no entry is usable")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeDataset(t, `{not json`)
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed JSON")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Load() should fail on a missing file")
	}
}

func TestFactText(t *testing.T) {
	withSummary := Record{Answer: "full answer", OfflineSummary: "short summary"}
	if got := withSummary.FactText(); got != "short summary" {
		t.Errorf("FactText() = %q, want summary", got)
	}

	withoutSummary := Record{Answer: "full answer"}
	if got := withoutSummary.FactText(); got != "full answer" {
		t.Errorf("FactText() = %q, want answer", got)
	}
}

func TestHashChangesWithContent(t *testing.T) {
	path := writeDataset(t, `[{"input": "q", "output": "a"}]`)

	first, err := Hash(path)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := os.WriteFile(path, []byte(`[{"input": "q", "output": "changed"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	second, err := Hash(path)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if first == second {
		t.Error("hash should change when the dataset content changes")
	}
}
