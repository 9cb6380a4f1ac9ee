package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cipherdrop/cipherdrop/internal/cryptox"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.Equal(t, "direct", cfg.TransferMode)
	require.Equal(t, cryptox.DefaultIterations, cfg.PBKDF2Iterations)
	require.Equal(t, 15*time.Minute, cfg.PresignExpiry)
	require.Empty(t, cfg.DatabaseDSN)
	require.NotEmpty(t, cfg.BaseDownloadURL)
}

func TestJsonOverlay_PartialFile(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	var jc JsonConfig
	require.NoError(t, json.Unmarshal([]byte(`{
		"base_download_url": "https://drop.example.com/d",
		"presign_expiry": "30m"
	}`), &jc))

	applyJson(cfg, &jc)

	require.Equal(t, "https://drop.example.com/d", cfg.BaseDownloadURL)
	require.Equal(t, 30*time.Minute, cfg.PresignExpiry)
	require.Equal(t, "direct", cfg.TransferMode, "absent fields keep their defaults")
}
