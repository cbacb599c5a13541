package evaluate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
)

// Sample is one labelled review
type Sample struct {
	Text string
	Fake bool
}

// ErrNoColumns is returned when the header lacks a text or label column
var ErrNoColumns = errors.New("evaluate: csv needs text and label columns")

// ParseLabel maps dataset labels onto the fake flag.
// Accepts fake/genuine, 1/0, true/false and CG/OR (computer generated / original)
func ParseLabel(s string) (fake bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fake", "1", "true", "cg", "deceptive", "spam":
		return true, nil
	case "genuine", "0", "false", "or", "truthful", "real", "ham":
		return false, nil
	}
	return false, fmt.Errorf("evaluate: unknown label %q", s)
}

// ReadCSV reads samples from a CSV with a header row. The text column may be
// named text, text_ or review; the label column label or class
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("evaluate: read header: %w", err)
	}
	ti, li := -1, -1
	for i, h := range head {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "text", "text_", "review":
			ti = i
		case "label", "class":
			li = i
		}
	}
	if ti < 0 || li < 0 {
		return nil, ErrNoColumns
	}

	var out []Sample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("evaluate: line %d: %w", line, err)
		}
		if ti >= len(rec) || li >= len(rec) {
			return nil, fmt.Errorf("evaluate: line %d: short record", line)
		}
		fake, err := ParseLabel(rec[li])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, Sample{Text: rec[ti], Fake: fake})
	}
}

// Split shuffles samples with seed and returns train and test partitions,
// train holding frac of the rows
func Split(samples []Sample, frac float64, seed int64) (train, test []Sample) {
	s := append([]Sample(nil), samples...)
	rand.New(rand.NewSource(seed)).Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
	n := int(float64(len(s)) * frac)
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return s[:n], s[n:]
}

// WriteResults writes per-sample results as CSV
func WriteResults(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"text", "actual", "predicted", "score", "error"}); err != nil {
		return err
	}
	for _, r := range results {
		e := ""
		if r.Err != nil {
			e = r.Err.Error()
		}
		if err := cw.Write([]string{
			r.Text, label(r.Fake), label(r.Predicted), fmt.Sprintf("%.6f", r.Score), e,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func label(fake bool) string {
	if fake {
		return "fake"
	}
	return "genuine"
}
