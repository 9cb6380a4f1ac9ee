// Package config handles configuration for the CipherDrop CLI, including
// defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/cipherdrop/cipherdrop/internal/cryptox"
)

// Config holds runtime settings for the CipherDrop CLI.
//
// DatabaseDSN empty means "run on in-memory stores" (nothing survives
// the process). TransferMode selects how ciphertext reaches the bucket:
// "direct" uses the S3 API, "presigned" transfers over presigned URLs
// the way a browser client would.
type Config struct {
	BaseDownloadURL  string
	DatabaseDSN      string
	PBKDF2Iterations int
	TransferMode     string
	PresignExpiry    time.Duration
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
}

// LoadDefaults populates c with development defaults: in-memory stores
// (empty DSN, empty bucket) so the CLI works without any backing
// services. The S3 credential values match a local MinIO and are not for
// production.
func (c *Config) LoadDefaults() {
	c.BaseDownloadURL = "http://localhost:8080/d"
	c.DatabaseDSN = ""
	c.PBKDF2Iterations = cryptox.DefaultIterations
	c.TransferMode = "direct"
	c.PresignExpiry = 15 * time.Minute
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
