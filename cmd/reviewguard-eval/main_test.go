package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reviewguard/internal/core/bayes"
	"reviewguard/internal/core/evaluate"
)

const dataset = "text,label\n" +
	"amazing best product ever buy now five stars,fake\n" +
	"the strap broke after two weeks but support replaced it,genuine\n"

func setup(t *testing.T) (dir, data, model string) {
	t.Helper()
	dir = t.TempDir()
	data = filepath.Join(dir, "test.csv")
	if err := os.WriteFile(data, []byte(dataset), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := bayes.Train("nb-eval", []bayes.Document{
		bayes.Labelled("amazing best product ever buy now five stars", true),
		bayes.Labelled("the strap broke after two weeks but support replaced it", false),
	})
	if err != nil {
		t.Fatal(err)
	}
	model = filepath.Join(dir, "model.json")
	if err := m.SaveFile(model); err != nil {
		t.Fatal(err)
	}
	return dir, data, model
}

func TestRun_LocalModel(t *testing.T) {
	dir, data, model := setup(t)
	out := filepath.Join(dir, "results", "detailed_results.csv")

	var stdout bytes.Buffer
	if err := run(context.Background(), []string{"-data", data, "-model", model, "-out", out}, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}

	var rep evaluate.Report
	if err := json.Unmarshal(stdout.Bytes(), &rep); err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.Confusion.TP != 1 || rep.Confusion.TN != 1 || rep.Threshold != 0.7 {
		t.Fatalf("report = %+v", rep)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "text,actual,predicted") {
		t.Fatalf("results csv = %q", raw)
	}
}

func TestRun_RemoteModel(t *testing.T) {
	_, data, _ := setup(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fake_probability":0.9,"model_version":"remote-1","processing_time_ms":1}`))
	}))
	defer srv.Close()

	var stdout bytes.Buffer
	if err := run(context.Background(), []string{"-data", data, "-remote", srv.URL, "-out", ""}, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	var rep evaluate.Report
	if err := json.Unmarshal(stdout.Bytes(), &rep); err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.Confusion.TP != 1 || rep.Confusion.FP != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestRun_Errors(t *testing.T) {
	dir, data, model := setup(t)
	tests := []struct {
		name string
		args []string
	}{
		{"missing model", []string{"-data", data, "-model", filepath.Join(dir, "none.json")}},
		{"missing data", []string{"-data", filepath.Join(dir, "none.csv"), "-model", model}},
		{"bad threshold", []string{"-data", data, "-model", model, "-threshold", "1.5"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := run(context.Background(), append(tc.args, "-out", ""), &bytes.Buffer{}); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
