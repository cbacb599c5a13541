package evaluate

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"reviewguard/internal/core/engine"
	"reviewguard/internal/core/normalize"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestConfusion_Metrics(t *testing.T) {
	var c Confusion
	for i := 0; i < 3; i++ {
		c.Add(true, true)
	}
	c.Add(true, false)
	c.Add(false, true)
	for i := 0; i < 5; i++ {
		c.Add(false, false)
	}
	if c.Total() != 10 || c.TP != 3 || c.FP != 1 || c.FN != 1 || c.TN != 5 {
		t.Fatalf("confusion = %+v", c)
	}
	if !near(c.Accuracy(), 0.8) || !near(c.Precision(), 0.75) || !near(c.Recall(), 0.75) || !near(c.F1(), 0.75) {
		t.Fatalf("acc=%v p=%v r=%v f1=%v", c.Accuracy(), c.Precision(), c.Recall(), c.F1())
	}
	var empty Confusion
	if empty.Accuracy() != 0 || empty.F1() != 0 {
		t.Fatal("empty confusion should report zeros")
	}
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		fake   []bool
		want   float64
	}{
		{"perfect", []float64{0.1, 0.2, 0.8, 0.9}, []bool{false, false, true, true}, 1},
		{"inverted", []float64{0.9, 0.8, 0.2, 0.1}, []bool{false, false, true, true}, 0},
		{"all tied", []float64{0.5, 0.5, 0.5, 0.5}, []bool{false, true, false, true}, 0.5},
		{"one class", []float64{0.1, 0.9}, []bool{true, true}, 0},
		{"partial", []float64{0.1, 0.4, 0.35, 0.8}, []bool{false, false, true, true}, 0.75},
	}
	for _, tc := range tests {
		if got := AUC(tc.scores, tc.fake); !near(got, tc.want) {
			t.Fatalf("%s: AUC = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestReadCSV(t *testing.T) {
	in := "category,rating,label,text_\n" +
		"Home,5,CG,\"Love this, well made\"\n" +
		"Home,4,OR,Works as described\n" +
		"Toys,1,fake,buy now\n"
	got, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || !got[0].Fake || got[1].Fake || got[0].Text != "Love this, well made" {
		t.Fatalf("samples = %+v", got)
	}

	if _, err := ReadCSV(strings.NewReader("a,b\n1,2\n")); !errors.Is(err, ErrNoColumns) {
		t.Fatalf("err = %v, want ErrNoColumns", err)
	}
	if _, err := ReadCSV(strings.NewReader("text,label\nhello,maybe\n")); err == nil {
		t.Fatal("expected label error")
	}
}

func TestSplit(t *testing.T) {
	s := make([]Sample, 10)
	for i := range s {
		s[i] = Sample{Text: string(rune('a' + i))}
	}
	train, test := Split(s, 0.8, 42)
	if len(train) != 8 || len(test) != 2 {
		t.Fatalf("split = %d/%d", len(train), len(test))
	}
	again, _ := Split(s, 0.8, 42)
	for i := range train {
		if train[i] != again[i] {
			t.Fatal("split not deterministic for a fixed seed")
		}
	}
	if s[0].Text != "a" {
		t.Fatal("input slice mutated")
	}
}

func TestRun(t *testing.T) {
	m := engine.ModelFunc(func(_ context.Context, txt normalize.Text) (float64, error) {
		switch {
		case strings.Contains(txt.Value, "broken"):
			return 0, engine.ErrModelUnavailable
		case strings.Contains(txt.Value, "amazing"):
			return 0.9, nil
		}
		return 0.2, nil
	})
	samples := []Sample{
		{Text: "AMAZING deal", Fake: true},
		{Text: "solid hinge", Fake: false},
		{Text: "amazing but real", Fake: false},
		{Text: "broken sample", Fake: true},
	}
	rep, res, err := Run(context.Background(), m, samples, 0.7)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 4 || rep.Skipped != 1 {
		t.Fatalf("results=%d skipped=%d", len(res), rep.Skipped)
	}
	if rep.Confusion != (Confusion{TP: 1, FP: 1, TN: 1}) {
		t.Fatalf("confusion = %+v", rep.Confusion)
	}

	var buf bytes.Buffer
	if err := WriteResults(&buf, res); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 5 {
		t.Fatalf("csv lines = %d, want 5", lines)
	}
}
