//go:build !gocv
// +build !gocv

package colorimetry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"repair-bot/internal/domain/analysis"
)

func TestMeter_EdgesDisabledWithoutOpenCV(t *testing.T) {
	m := NewMeter(analysis.DefaultParams().Indicators)

	ind := m.Measure(checker(64, 4, rustLight, rustDark), flat(64, paint))

	require.Zero(t, ind.EdgeReduction)
	require.InDelta(t, 100, ind.RustReduction, 1e-9)
}
