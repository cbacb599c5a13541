// Command reviewguard-eval scores a labelled CSV with a trained model or the
// remote classifier and writes per-row results
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"reviewguard/internal/adapters/model/mlclient"
	"reviewguard/internal/core/bayes"
	"reviewguard/internal/core/engine"
	"reviewguard/internal/core/evaluate"
	"reviewguard/internal/platform/logger"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		logger.Get().Fatal().Err(err).Msg("evaluation failed")
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("reviewguard-eval", flag.ContinueOnError)
	data := fs.String("data", "test.csv", "labelled csv with text and label columns")
	model := fs.String("model", "models/model.json", "model artifact path")
	remote := fs.String("remote", "", "classifier sidecar url, overrides -model")
	threshold := fs.Float64("threshold", 0.7, "fake threshold, inclusive")
	out := fs.String("out", "evaluation_results/detailed_results.csv", "per-row results csv, empty to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *threshold < 0 || *threshold > 1 {
		return fmt.Errorf("threshold must be in [0,1], got %v", *threshold)
	}
	log := logger.Named("eval")

	scorer, err := loadScorer(*model, *remote)
	if err != nil {
		return err
	}

	f, err := os.Open(*data)
	if err != nil {
		return err
	}
	samples, err := evaluate.ReadCSV(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	rep, results, err := evaluate.Run(ctx, scorer, samples, *threshold)
	if err != nil {
		return err
	}
	if rep.Skipped > 0 {
		log.Warn().Int("skipped", rep.Skipped).Msg("rows the model could not score")
	}

	if *out != "" {
		if err := writeResults(*out, results); err != nil {
			return err
		}
		log.Info().Str("out", *out).Int("rows", len(results)).Msg("results written")
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func loadScorer(model, remote string) (engine.ModelScorer, error) {
	if remote != "" {
		return mlclient.New(remote, mlclient.DefaultTimeout), nil
	}
	return bayes.LoadFile(model)
}

func writeResults(path string, results []evaluate.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := evaluate.WriteResults(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
