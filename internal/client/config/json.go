package config

import (
	"encoding/json"
	"os"

	"github.com/cipherdrop/cipherdrop/internal/flagx"
	"github.com/cipherdrop/cipherdrop/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify the presign expiry either as a
// string like "15m" or as integer nanoseconds.
type JsonConfig struct {
	BaseDownloadURL  *string         `json:"base_download_url"`
	DatabaseDSN      *string         `json:"database_dsn"`
	PBKDF2Iterations *int            `json:"pbkdf2_iterations"`
	TransferMode     *string         `json:"transfer_mode"`
	PresignExpiry    *timex.Duration `json:"presign_expiry"`
	S3AccessKey      *string         `json:"s3_access_key"`
	S3SecretKey      *string         `json:"s3_secret_key"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         *string         `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; when absent, nothing is loaded.
// Only fields present in the file override defaults. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	applyJson(cfg, &jc)
}

// applyJson copies the fields present in jc onto cfg.
func applyJson(cfg *Config, jc *JsonConfig) {
	if jc.BaseDownloadURL != nil {
		cfg.BaseDownloadURL = *jc.BaseDownloadURL
	}
	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.PBKDF2Iterations != nil {
		cfg.PBKDF2Iterations = *jc.PBKDF2Iterations
	}
	if jc.TransferMode != nil {
		cfg.TransferMode = *jc.TransferMode
	}
	if jc.PresignExpiry != nil {
		cfg.PresignExpiry = jc.PresignExpiry.Duration
	}
	if jc.S3AccessKey != nil {
		cfg.S3AccessKey = *jc.S3AccessKey
	}
	if jc.S3SecretKey != nil {
		cfg.S3SecretKey = *jc.S3SecretKey
	}
	if jc.S3Bucket != nil {
		cfg.S3Bucket = *jc.S3Bucket
	}
	if jc.S3Region != nil {
		cfg.S3Region = *jc.S3Region
	}
	if jc.S3BaseEndpoint != nil {
		cfg.S3BaseEndpoint = *jc.S3BaseEndpoint
	}
}
