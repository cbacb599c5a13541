package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reviewguard/internal/core/bayes"
	"reviewguard/internal/core/evaluate"
)

func writeDataset(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("text,label\n")
	for i := 0; i < 10; i++ {
		b.WriteString("amazing best product ever buy now five stars,fake\n")
		b.WriteString("the strap broke after two weeks but support replaced it,genuine\n")
	}
	p := filepath.Join(dir, "reviews.csv")
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRun_TrainsAndReports(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir)
	out := filepath.Join(dir, "models", "model.json")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"-data", data, "-out", out, "-version", "nb-test"}, &stdout)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	m, err := bayes.LoadFile(out)
	if err != nil {
		t.Fatalf("load artifact: %v", err)
	}
	if m.Version() != "nb-test" || !m.Ready() {
		t.Fatalf("artifact version=%q ready=%v", m.Version(), m.Ready())
	}

	var rep evaluate.Report
	if err := json.Unmarshal(stdout.Bytes(), &rep); err != nil {
		t.Fatalf("report: %v\n%s", err, stdout.String())
	}
	if rep.Confusion.Total() != 4 || rep.Accuracy != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir)

	tests := []struct {
		name string
		args []string
	}{
		{"missing data", []string{"-data", filepath.Join(dir, "nope.csv")}},
		{"bad split", []string{"-data", data, "-split", "0"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout bytes.Buffer
			if err := run(context.Background(), append(tc.args, "-out", filepath.Join(dir, "m.json")), &stdout); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
