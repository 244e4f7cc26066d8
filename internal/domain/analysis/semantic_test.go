package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"repair-bot/internal/domain/entity"
)

func TestParseSemanticVerdict(t *testing.T) {
	cases := []struct {
		name       string
		text       string
		label      entity.SemanticLabel
		confidence float64
	}{
		{"strong", "VERDICT: REPAIRED\nThe crack was filled.", entity.LabelRepaired, 0.90},
		{"strong clearly", "The surface is clearly repaired.", entity.LabelRepaired, 0.95},
		{"weak", "Surface restored with new paint.", entity.LabelRepaired, 0.75},
		{"weak hedged", "Maybe restored.", entity.LabelRepaired, 0.55},
		{"negative", "VERDICT: NOT_REPAIRED\nRust remains.", entity.LabelNotRepaired, 0.85},
		{"capture", "Only the lighting differs between photos.", entity.LabelNotRepaired, 0.85},
		{"capture clearly", "Clearly a different camera angle.", entity.LabelNotRepaired, 0.95},
		{"uncertain", "Hard to tell from these photos.", entity.LabelUncertain, 0.50},
		{"uncertain hedged", "Possibly something else.", entity.LabelUncertain, 0.40},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseSemanticVerdict(tc.text)
			require.True(t, ok)
			require.Equal(t, tc.label, got.Label)
			require.InDelta(t, tc.confidence, got.Confidence, 1e-9)
			require.NotEmpty(t, got.Reasoning)
		})
	}
}

func TestParseSemanticVerdict_Empty(t *testing.T) {
	_, ok := ParseSemanticVerdict("  \n ")
	require.False(t, ok)
}

func TestSemanticVerdict_ToVerdict(t *testing.T) {
	sv, ok := ParseSemanticVerdict("NOT_REPAIRED")
	require.True(t, ok)

	v := sv.Verdict()

	require.False(t, v.IsRepair)
	require.Equal(t, entity.SourceExternal, v.Source)
	require.Equal(t, 0.85, v.Confidence)
}
