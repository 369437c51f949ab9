package usecase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"RegimePulse/internal/domain/models"
)

func sampleVerdicts() []models.Verdict {
	return []models.Verdict{
		{
			EngineVersion: models.EngineVersion,
			Timestamp:     "2025-08-30",
			TotalScore:    3.5,
			Label:         models.LabelBull,
			Confidence:    models.ConfidenceHigh,
			Breakdown: []models.MetricSummary{
				{Metric: "fear_greed_index", Score: 1.5, RawValue: 90, Confidence: models.ConfidenceHigh},
				{Metric: "mvrv_ratio", Score: 2.0, RawValue: 0.9, Confidence: models.ConfidenceHigh},
			},
		},
		{
			EngineVersion: models.EngineVersion,
			Timestamp:     "2025-08-31",
			TotalScore:    0,
			Label:         models.LabelSideways,
			Confidence:    models.ConfidenceHigh,
			Breakdown: []models.MetricSummary{
				{Metric: "fear_greed_index", Score: 0, RawValue: 50, Confidence: models.ConfidenceHigh},
			},
		},
	}
}

func TestExportHistoryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := ExportHistory(sampleVerdicts(), path); err != nil {
		t.Fatalf("export: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != "timestamp,label,score,confidence,score_fear_greed_index,raw_fear_greed_index,score_mvrv_ratio,raw_mvrv_ratio" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	// The second day has no mvrv reading; its columns stay blank.
	if !strings.HasSuffix(lines[2], ",,") {
		t.Fatalf("expected trailing blanks, got %q", lines[2])
	}
}

func TestExportHistoryJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := ExportHistory(sampleVerdicts(), path); err != nil {
		t.Fatalf("export: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got []models.Verdict
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Label != models.LabelBull {
		t.Fatalf("unexpected roundtrip %+v", got)
	}
}

func TestExportHistoryEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := ExportHistory(nil, path); err == nil {
		t.Fatalf("expected error for empty export")
	}
}
