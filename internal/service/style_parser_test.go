package service

import (
	"strings"
	"testing"
)

func TestExtractFirstJSONObject(t *testing.T) {
	cases := map[string]string{
		`Analisis: {"a":1} fin`:             `{"a":1}`,
		`{"a":{"b":"}"}} {"c":2}`:           `{"a":{"b":"}"}}`,
		`{"quote":"he said \"{hi}\""} tail`: `{"quote":"he said \"{hi}\""}`,
		`no json here`:                      ``,
		`{"open": true`:                     ``,
	}
	for in, want := range cases {
		if got := extractFirstJSONObject(in); got != want {
			t.Fatalf("extractFirstJSONObject(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanLLMJSONResponse(t *testing.T) {
	raw := "\uFEFF```json\n{\"a\":1}\n```"
	if got := cleanLLMJSONResponse(raw); got != `{"a":1}` {
		t.Fatalf("unexpected cleaned output: %q", got)
	}
}

func TestStyleProfileParserAllowsEmptyColorsAndUnknownKeys(t *testing.T) {
	parser := NewStyleProfileParser(0.9)
	profile, err := parser.Parse(`{"styleCategories":["casual"],"occasion":"errands","colorPreferences":[],"formalityLevel":1,"seasonality":["all-season"],"budgetIndicator":"low","notes":"ignored"}`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.ColorPreferences == nil || len(profile.ColorPreferences) != 0 {
		t.Fatalf("expected empty non-nil colors, got %#v", profile.ColorPreferences)
	}
	if profile.Confidence != 0.9 {
		t.Fatalf("expected default confidence, got %v", profile.Confidence)
	}
}

func TestStyleProfileParserRejectsBlankEntries(t *testing.T) {
	parser := NewStyleProfileParser(0.9)
	_, err := parser.Parse(`{"styleCategories":["  "],"occasion":"errands","colorPreferences":[],"formalityLevel":1,"seasonality":"all","budgetIndicator":"low"}`)
	if err == nil {
		t.Fatalf("expected error for blank category")
	}
}

func TestStyleProfileParserSkipsBracesBeforeTheProfile(t *testing.T) {
	parser := NewStyleProfileParser(0.9)
	raw := "Profile for {user}:\n" + `{"styleCategories":["casual"],"occasion":"weekend","colorPreferences":[],"formalityLevel":3,"seasonality":"summer","budgetIndicator":"low"}`
	profile, err := parser.Parse(raw)
	if err != nil {
		t.Fatalf("expected profile after placeholder braces, got %v", err)
	}
	if profile.Occasion != "weekend" {
		t.Fatalf("unexpected occasion %q", profile.Occasion)
	}
}

func TestStyleProfileParserReportsInvalidJSONWhenNoCandidateDecodes(t *testing.T) {
	parser := NewStyleProfileParser(0.9)
	_, err := parser.Parse("{user} and {size}")
	if err == nil || !strings.Contains(err.Error(), "invalid JSON") {
		t.Fatalf("expected invalid JSON error, got %v", err)
	}
}

func TestStyleProfileParserRejectsCaseVariantKeys(t *testing.T) {
	parser := NewStyleProfileParser(0.9)
	_, err := parser.Parse(`{"STYLECATEGORIES":["casual"],"OCCASION":"weekend","colorPreferences":[],"formalityLevel":3,"seasonality":"summer","budgetIndicator":"low"}`)
	if err == nil {
		t.Fatalf("expected error for upper-case keys")
	}
	if !strings.Contains(err.Error(), "unexpected key") {
		t.Fatalf("expected key error, got %v", err)
	}
}
