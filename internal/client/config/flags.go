package config

import (
	"flag"
	"os"

	"github.com/cipherdrop/cipherdrop/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-b string   base download URL used when building share links
//	-d string   PostgreSQL DSN for the metadata database (empty = in-memory)
//	-i int      PBKDF2 iteration count for new indexes
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseDownloadURL, "b", cfg.BaseDownloadURL, "base download URL for share links")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "metadata database DSN")
	fs.IntVar(&cfg.PBKDF2Iterations, "i", cfg.PBKDF2Iterations, "PBKDF2 iteration count")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
