package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"FitPull/internal/domain/models"
)

func TestWriteResultsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_parameters.json")
	results := []models.SymbolMetrics{
		{Symbol: "AAPL", NormalizedMetrics: models.NormalizedMetrics{ArCoeff: 0.3, GarchVolatility: 1.1}},
		{Symbol: "MSFT", NormalizedMetrics: models.NormalizedMetrics{MaCoeff: -0.2}},
	}

	if err := writeResultsFile(path, results); err != nil {
		t.Fatalf("write: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var keyed map[string]models.NormalizedMetrics
	if err := json.Unmarshal(b, &keyed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(keyed) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keyed))
	}
	if keyed["AAPL"].ArCoeff != 0.3 || keyed["AAPL"].GarchVolatility != 1.1 {
		t.Fatalf("unexpected AAPL record: %+v", keyed["AAPL"])
	}
	if keyed["MSFT"].MaCoeff != -0.2 {
		t.Fatalf("unexpected MSFT record: %+v", keyed["MSFT"])
	}
}

func TestWriteResultsFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := writeResultsFile(path, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "{}" {
		t.Fatalf("expected empty object, got %q", string(b))
	}
}

func TestReadSymbolsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.csv")
	csv := "id,Symbol,name\n1,AAPL,Apple\n2, MSFT ,Microsoft\n3,,blank\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	got, err := readSymbolsCSV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0] != "AAPL" || got[1] != "MSFT" {
		t.Fatalf("unexpected symbols: %v", got)
	}
}

func TestReadSymbolsCSVMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.csv")
	if err := os.WriteFile(path, []byte("id,name\n1,Apple\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if _, err := readSymbolsCSV(path); err == nil {
		t.Fatal("expected error for missing symbol column")
	}
}
