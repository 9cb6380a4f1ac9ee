package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFlags_Overrides(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cdrop", "-b", "https://drop.example.com/d", "-d", "postgres://x", "-i", "150000", "-unknown", "zzz"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	require.Equal(t, "https://drop.example.com/d", cfg.BaseDownloadURL)
	require.Equal(t, "postgres://x", cfg.DatabaseDSN)
	require.Equal(t, 150000, cfg.PBKDF2Iterations)
}

func TestParseFlags_KeepsDefaultsWhenAbsent(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cdrop"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	require.Equal(t, "http://localhost:8080/d", cfg.BaseDownloadURL)
}
