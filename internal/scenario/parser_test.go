package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"agenttrust/internal/gametheory"
)

func writeScenarioFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestParseScenarioFile_SortedByName(t *testing.T) {
	dir := t.TempDir()
	path := writeScenarioFile(t, dir, "scenarios.json", `[
		{"name": "zeta", "stake": 100, "detection_probability": 0.5, "max_violation_gain": 10},
		{"name": "alpha", "stake": 200, "detection_probability": 0.8, "max_violation_gain": 20}
	]`)

	records, err := ParseScenarioFile(path)
	if err != nil {
		t.Fatalf("ParseScenarioFile failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "alpha" || records[1].Name != "zeta" {
		t.Errorf("expected name-sorted order, got %s, %s", records[0].Name, records[1].Name)
	}
	if records[0].Stake != 200 {
		t.Errorf("expected alpha stake 200, got %f", records[0].Stake)
	}
}

func TestParseScenarioFile_DuplicateName(t *testing.T) {
	dir := t.TempDir()
	path := writeScenarioFile(t, dir, "dup.json", `[
		{"name": "same", "stake": 1, "detection_probability": 0.5},
		{"name": "same", "stake": 2, "detection_probability": 0.5}
	]`)

	if _, err := ParseScenarioFile(path); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestParseScenarioFile_MissingName(t *testing.T) {
	dir := t.TempDir()
	path := writeScenarioFile(t, dir, "unnamed.json",
		`[{"stake": 1, "detection_probability": 0.5}]`)

	if _, err := ParseScenarioFile(path); err == nil {
		t.Fatal("expected error for unnamed record")
	}
}

func TestParseScenarioFile_InvalidParams(t *testing.T) {
	dir := t.TempDir()
	path := writeScenarioFile(t, dir, "bad.json",
		`[{"name": "bad", "stake": -5, "detection_probability": 0.5}]`)

	_, err := ParseScenarioFile(path)
	if !errors.Is(err, gametheory.ErrInvalidInput) {
		t.Errorf("expected wrapped ErrInvalidInput, got %v", err)
	}
}

func TestParseScenarioFile_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenarioFile(t, dir, "empty.json", "")

	if _, err := ParseScenarioFile(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestParseScenarioFile_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeScenarioFile(t, dir, "broken.json", `[{"name": "x"`)

	if _, err := ParseScenarioFile(path); err == nil {
		t.Fatal("expected JSON parse error")
	}
}

func TestParseScenarioDirectory_MergesAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "b.json",
		`[{"name": "mid", "stake": 1, "detection_probability": 0.5}]`)
	writeScenarioFile(t, dir, "a.json",
		`[{"name": "zed", "stake": 1, "detection_probability": 0.5},
		  {"name": "art", "stake": 1, "detection_probability": 0.5}]`)
	writeScenarioFile(t, dir, "notes.txt", "ignored")

	records, err := ParseScenarioDirectory(dir)
	if err != nil {
		t.Fatalf("ParseScenarioDirectory failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	want := []string{"art", "mid", "zed"}
	for i, name := range want {
		if records[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, records[i].Name)
		}
	}
}

func TestParseScenarioDirectory_CrossFileDuplicate(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "a.json",
		`[{"name": "same", "stake": 1, "detection_probability": 0.5}]`)
	writeScenarioFile(t, dir, "b.json",
		`[{"name": "same", "stake": 2, "detection_probability": 0.5}]`)

	if _, err := ParseScenarioDirectory(dir); err == nil {
		t.Fatal("expected cross-file duplicate error")
	}
}

func TestRecord_Params(t *testing.T) {
	r := Record{
		Name:                 "x",
		Stake:                100,
		DetectionProbability: 0.8,
		ReputationValue:      20,
		MaxViolationGain:     50,
		Coburn:               5,
	}

	p := r.Params()
	if p.Stake != 100 || p.DetectionProbability != 0.8 || p.ReputationValue != 20 ||
		p.MaxViolationGain != 50 || p.Coburn != 5 {
		t.Errorf("params mismatch: %+v", p)
	}
}
