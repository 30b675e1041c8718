package generator

import (
	"math"
	"testing"

	"advisor-ai/internal/retriever"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestConfidenceHighTier(t *testing.T) {
	tests := []struct {
		name string
		in   ConfidenceInput
		want float64
	}{
		{
			name: "mean 0.5 no web",
			in:   ConfidenceInput{Tier: retriever.TierHigh, MeanScore: 0.5},
			want: 0.7,
		},
		{
			name: "mean 0.5 with web",
			in:   ConfidenceInput{Tier: retriever.TierHigh, MeanScore: 0.5, WebUsed: true, WebSnippets: 3},
			want: 0.8,
		},
		{
			name: "low mean floors bonus at 0.2",
			in:   ConfidenceInput{Tier: retriever.TierHigh, MeanScore: 0.2},
			want: 0.7,
		},
		{
			name: "mean 1.0 caps bonus at 0.45",
			in:   ConfidenceInput{Tier: retriever.TierHigh, MeanScore: 1.0},
			want: 0.95,
		},
		{
			name: "web enabled but zero snippets adds nothing",
			in:   ConfidenceInput{Tier: retriever.TierHigh, MeanScore: 0.5, WebUsed: true, WebSnippets: 0},
			want: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.in); !almostEqual(got, tt.want) {
				t.Errorf("Confidence(%+v) = %f, want %f", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfidenceLowTier(t *testing.T) {
	got := Confidence(ConfidenceInput{Tier: retriever.TierLow, MeanScore: 0.08})
	if got < 0.55 || got > 0.65 {
		t.Errorf("low tier confidence %f outside [0.55, 0.65]", got)
	}

	// Web contribution lifts the cap to 0.75.
	withWeb := Confidence(ConfidenceInput{Tier: retriever.TierLow, MeanScore: 0.14, WebUsed: true, WebSnippets: 2})
	if withWeb <= got || withWeb > 0.75 {
		t.Errorf("low tier with web = %f, want in (%f, 0.75]", withWeb, got)
	}

	// Never exceeds 0.65 without web regardless of mean.
	capped := Confidence(ConfidenceInput{Tier: retriever.TierLow, MeanScore: 0.9})
	if !almostEqual(capped, 0.65) {
		t.Errorf("low tier cap = %f, want 0.65", capped)
	}
}

func TestConfidenceNoneTier(t *testing.T) {
	if got := Confidence(ConfidenceInput{Tier: retriever.TierNone}); !almostEqual(got, 0.6) {
		t.Errorf("open-domain confidence = %f, want 0.6", got)
	}

	webOnly := Confidence(ConfidenceInput{Tier: retriever.TierNone, WebUsed: true, WebSnippets: 3})
	if webOnly <= 0.6 || webOnly > 0.75 {
		t.Errorf("web-only confidence %f outside (0.6, 0.75]", webOnly)
	}

	maxWeb := Confidence(ConfidenceInput{Tier: retriever.TierNone, WebUsed: true, WebSnippets: 10})
	if !almostEqual(maxWeb, 0.75) {
		t.Errorf("web-only cap = %f, want 0.75", maxWeb)
	}
}

func TestConfidenceDeterministic(t *testing.T) {
	in := ConfidenceInput{Tier: retriever.TierHigh, MeanScore: 0.42, WebUsed: true, WebSnippets: 2}
	if Confidence(in) != Confidence(in) {
		t.Error("confidence must be deterministic for identical input")
	}
}
