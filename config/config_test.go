package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("GEMINI_MODEL_NAME", "gemini-1.5-pro")
	t.Setenv("REQUEST_TIMEOUT", "45s")
	t.Setenv("EXTERNAL_TIMEOUT", "")
	t.Setenv("MAX_PHOTOS", "4")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "token", cfg.TelegramToken)
	require.Equal(t, "gemini-1.5-pro", cfg.GeminiModelName)
	require.Equal(t, 45*time.Second, cfg.RequestTimeout)
	require.Zero(t, cfg.ExternalTimeout)
	require.Equal(t, 4, cfg.MaxPhotos)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("MAX_PHOTOS", "-1")
	_, err = Load()
	require.Error(t, err)
}
