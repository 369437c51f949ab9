package usecase

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"RegimePulse/internal/domain/models"
)

// ExportHistory writes day-binned verdicts to a file. The extension picks
// the format: .json gets the full structure, anything else a flat CSV with
// one score and raw column per indicator.
func ExportHistory(verdicts []models.Verdict, path string) error {
	if strings.HasSuffix(path, ".json") {
		return exportJSON(verdicts, path)
	}
	return exportCSV(verdicts, path)
}

func exportJSON(verdicts []models.Verdict, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(verdicts)
}

func exportCSV(verdicts []models.Verdict, path string) error {
	if len(verdicts) == 0 {
		return fmt.Errorf("nothing to export")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	// Column order follows the first day's breakdown.
	header := []string{"timestamp", "label", "score", "confidence"}
	for _, m := range verdicts[0].Breakdown {
		header = append(header, "score_"+m.Metric, "raw_"+m.Metric)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, v := range verdicts {
		row := []string{
			v.Timestamp,
			v.Label,
			strconv.FormatFloat(v.TotalScore, 'f', -1, 64),
			string(v.Confidence),
		}
		byMetric := make(map[string]models.MetricSummary, len(v.Breakdown))
		for _, m := range v.Breakdown {
			byMetric[m.Metric] = m
		}
		for _, m := range verdicts[0].Breakdown {
			entry, ok := byMetric[m.Metric]
			if !ok {
				row = append(row, "", "")
				continue
			}
			row = append(row,
				strconv.FormatFloat(entry.Score, 'f', -1, 64),
				strconv.FormatFloat(entry.RawValue, 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
