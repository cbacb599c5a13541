// Command reviewguard-train fits the naive Bayes review model from a labelled
// CSV and reports holdout metrics
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"reviewguard/internal/core/bayes"
	"reviewguard/internal/core/evaluate"
	"reviewguard/internal/platform/logger"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		logger.Get().Fatal().Err(err).Msg("training failed")
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("reviewguard-train", flag.ContinueOnError)
	data := fs.String("data", "reviews.csv", "labelled csv with text and label columns")
	out := fs.String("out", "models/model.json", "model artifact path")
	split := fs.Float64("split", 0.8, "fraction of rows used for training")
	seed := fs.Int64("seed", 42, "shuffle seed")
	threshold := fs.Float64("threshold", 0.7, "fake threshold for holdout metrics")
	version := fs.String("version", "", "artifact version tag, defaults to nb-<utc date>")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *split <= 0 || *split > 1 {
		return fmt.Errorf("split must be in (0,1], got %v", *split)
	}
	if *version == "" {
		*version = "nb-" + time.Now().UTC().Format("20060102")
	}
	log := logger.Named("train")

	samples, err := readSamples(*data)
	if err != nil {
		return err
	}
	train, test := evaluate.Split(samples, *split, *seed)
	log.Info().Int("train", len(train)).Int("test", len(test)).Msg("dataset split")

	docs := make([]bayes.Document, len(train))
	for i, s := range train {
		docs[i] = bayes.Labelled(s.Text, s.Fake)
	}
	m, err := bayes.Train(*version, docs)
	if err != nil {
		return err
	}
	if err := m.SaveFile(*out); err != nil {
		return err
	}
	fake, genuine, vocab := m.Stats()
	log.Info().Str("out", *out).Str("version", *version).
		Int("fake", fake).Int("genuine", genuine).Int("vocab", vocab).
		Msg("model saved")

	if len(test) == 0 {
		return nil
	}
	rep, _, err := evaluate.Run(ctx, m, test, *threshold)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func readSamples(path string) ([]evaluate.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return evaluate.ReadCSV(f)
}
