package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"RegimePulse/internal/di"
	"RegimePulse/internal/domain/models"
	"RegimePulse/internal/usecase"
	"RegimePulse/pkg/config"
	"RegimePulse/pkg/server"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "path to config file")
		snapshot   = flag.Bool("snapshot", false, "print one regime snapshot and exit")
		asJSON     = flag.Bool("json", false, "emit one-shot output as JSON")
		days       = flag.Int("days", 0, "analyze the last N days of history and exit")
		mtf        = flag.Bool("mtf", false, "run multi-timeframe confluence and exit")
		exportPath = flag.String("export", "", "write history verdicts to a .json or .csv file")
	)
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("initialize: %v", err)
	}

	if *snapshot || *days > 0 || *mtf {
		if err := runOnce(app, *snapshot, *asJSON, *days, *mtf, *exportPath); err != nil {
			log.Fatalf("analysis: %v", err)
		}
		return
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run: %v", err)
	}
}

// runOnce executes a single analysis pass instead of starting the server.
func runOnce(app *server.App, snapshot, asJSON bool, days int, mtf bool, exportPath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	defer app.Close()

	engine := app.Engine()

	switch {
	case mtf:
		result := engine.MTF(ctx, days)
		if asJSON {
			return printJSON(result)
		}
		printMTF(result)
	case days > 0:
		verdicts := engine.History(ctx, days)
		if exportPath != "" {
			if err := usecase.ExportHistory(verdicts, exportPath); err != nil {
				return err
			}
			fmt.Printf("exported %d verdicts to %s\n", len(verdicts), exportPath)
			return nil
		}
		if asJSON {
			return printJSON(verdicts)
		}
		printHistory(verdicts)
	default:
		verdict := engine.Snapshot(ctx)
		if asJSON {
			return printJSON(verdict)
		}
		printVerdict(verdict)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printVerdict(v models.Verdict) {
	fmt.Println("=== BTC MARKET REGIME ===")
	fmt.Printf("Time:       %s\n", v.Timestamp)
	fmt.Printf("Verdict:    %s\n", v.Label)
	fmt.Printf("Score:      %+.2f\n", v.TotalScore)
	fmt.Printf("Confidence: %s\n", v.Confidence)
	if v.AnomalyAlert != nil && v.AnomalyAlert.IsAnomaly {
		fmt.Printf("Anomaly:    %s (score %.4f)\n", v.AnomalyAlert.Severity, v.AnomalyAlert.AnomalyScore)
	}
	fmt.Println()
	fmt.Println("Breakdown:")
	for _, m := range v.Breakdown {
		marker := ""
		if m.IsFallback {
			marker = " (fallback)"
		}
		fmt.Printf("  %-26s %+6.2f  raw=%.4f  [%s]%s\n",
			m.Metric, m.Score, m.RawValue, m.Confidence, marker)
	}
	if len(v.Reasoning) > 0 {
		fmt.Println()
		fmt.Println("Reasoning:")
		for _, r := range v.Reasoning {
			fmt.Printf("  - %s\n", r)
		}
	}
}

func printHistory(verdicts []models.Verdict) {
	fmt.Printf("%-12s %-24s %8s  %s\n", "DATE", "LABEL", "SCORE", "CONFIDENCE")
	for _, v := range verdicts {
		fmt.Printf("%-12s %-24s %+8.2f  %s\n", v.Timestamp, v.Label, v.TotalScore, v.Confidence)
	}
}

func printMTF(r models.MTFResult) {
	fmt.Println("=== MULTI-TIMEFRAME CONFLUENCE ===")
	for _, row := range []struct {
		name string
		v    models.Verdict
	}{
		{"Daily", r.Daily},
		{"Weekly", r.Weekly},
		{"Monthly", r.Monthly},
	} {
		fmt.Printf("%-8s %-24s %+6.2f (%s)\n", row.name, row.v.Label, row.v.TotalScore, row.v.Confidence)
	}
	fmt.Println()
	fmt.Printf("Confluence: %d%%\n", r.ConfluenceScore)
	fmt.Printf("Thesis:     %s\n", r.MacroThesis)
}
