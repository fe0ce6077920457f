package textops

import "testing"

func TestNormalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text unchanged",
			in:   "Local council approves new bridge",
			want: "Local council approves new bridge",
		},
		{
			name: "whitespace collapsed",
			in:   "  breaking \t news   today\n",
			want: "breaking news today",
		},
		{
			name: "curly quotes replaced",
			in:   "“shocking” claims and the minister’s reply",
			want: `"shocking" claims and the minister's reply`,
		},
		{
			name: "long dashes replaced",
			in:   "markets fell — again – on Friday",
			want: "markets fell - again - on Friday",
		},
		{
			name: "zero width characters stripped",
			in:   "bre​aking ne﻿ws report",
			want: "breaking news report",
		},
		{
			name: "known typo corrected",
			in:   "teh goverment anounced a plan",
			want: "the government announced a plan",
		},
		{
			name: "typo with trailing punctuation",
			in:   "a statement from the goverment, apparently",
			want: "a statement from the government, apparently",
		},
		{
			name: "possessive typo corrected",
			in:   "the goverment's response",
			want: "the government's response",
		},
		{
			name: "capitalized words preserved",
			in:   "Teh Hague hosts the summit",
			want: "Teh Hague hosts the summit",
		},
		{
			name: "preserve list wins over correction",
			in:   "biden and nato met in brussels",
			want: "biden and nato met in brussels",
		},
		{
			name: "short words untouched",
			in:   "it is so up to us",
			want: "it is so up to us",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()

	inputs := []string{
		"teh goverment anounced a plan",
		"“shocking”  claims — with ​ spaces",
		"Officials recieve thier briefing untill noon",
		"plain ordinary sentence with no issues at all",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCorrectionTableIsIdempotent(t *testing.T) {
	// No correction output may itself be a correction key, otherwise a
	// second pass would rewrite already-normalized text.
	for typo, fix := range corrections {
		if _, ok := corrections[fix]; ok {
			t.Errorf("correction %q -> %q chains into another correction", typo, fix)
		}
	}
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		tok        string
		start, end int
	}{
		{"word", 0, 4},
		{"(word", 1, 5},
		{"word)", 0, 4},
		{"word's", 0, 4},
		{"...", 0, 0},
		{"", 0, 0},
	}
	for _, tt := range tests {
		start, end := wordBounds(tt.tok)
		if start != tt.start || end != tt.end {
			t.Errorf("wordBounds(%q) = (%d,%d), want (%d,%d)", tt.tok, start, end, tt.start, tt.end)
		}
	}
}
