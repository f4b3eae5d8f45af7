package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nstehr/gridlife/model"
	"github.com/nstehr/gridlife/rules"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Point
		wantErr bool
	}{
		{"0,0", model.Point{}, false},
		{"-3, 12", model.Point{X: -3, Y: 12}, false},
		{"3", model.Point{}, true},
		{"a,1", model.Point{}, true},
		{"1,b", model.Point{}, true},
	}
	for _, tc := range tests {
		got, err := parsePoint(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parsePoint(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("parsePoint(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"text", "json", "pretty"} {
		var buf bytes.Buffer
		logger, err := newLogger(&buf, format, "warn")
		if err != nil {
			t.Fatalf("newLogger(%s): %v", format, err)
		}
		logger.Info("hidden")
		logger.Warn("shown", "agent", "a1")
		out := buf.String()
		if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
			t.Errorf("%s output = %q", format, out)
		}
	}

	if _, err := newLogger(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Error("unknown format should fail")
	}
	if _, err := newLogger(&bytes.Buffer{}, "text", "loud"); err == nil {
		t.Error("unknown level should fail")
	}
}

func TestRuleSourceText(t *testing.T) {
	langton, _ := rules.Preset("langton")
	if got, err := (&ruleSource{preset: "langton"}).text(); err != nil || got != langton {
		t.Errorf("preset text = %q, %v", got, err)
	}
	if got, err := (&ruleSource{}).text(); err != nil || got != "" {
		t.Errorf("empty source = %q, %v", got, err)
	}
	if _, err := (&ruleSource{preset: "langton", file: "x.json"}).text(); err == nil {
		t.Error("two sources should fail")
	}
	if _, err := (&ruleSource{preset: "nope"}).text(); err == nil {
		t.Error("unknown preset should fail")
	}
}
