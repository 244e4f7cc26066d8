package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"repair-bot/config"
	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/infrastructure/storage"
	"repair-bot/pkg/log"
)

func TestNewAdapters_OptionalComponentsStayNil(t *testing.T) {
	a, err := NewAdapters(context.Background(), &config.Config{}, analysis.DefaultParams(), log.Discard())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Verifier.Aligner)
	require.NotNil(t, a.Verifier.Detector)
	require.NotNil(t, a.Verifier.Meter)
	require.NotNil(t, a.Highlighter)
	require.Nil(t, a.Verifier.Feature)
	require.Nil(t, a.Verifier.Perceptual)
	require.Nil(t, a.Verifier.Judge)
	require.Nil(t, a.Verifier.Proposer)
}

func TestNew(t *testing.T) {
	a, err := NewAdapters(context.Background(), &config.Config{}, analysis.DefaultParams(), log.Discard())
	require.NoError(t, err)

	c := New(storage.NewMemoryUserRepository(), storage.NewMemorySessionStore(5), a, analysis.DefaultParams(), log.Discard())

	require.NotNil(t, c.UserService)
	require.NotNil(t, c.InspectionService)
	require.NotNil(t, c.Verifier)
	require.NoError(t, a.Close())
}
