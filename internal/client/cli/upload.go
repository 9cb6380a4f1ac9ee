package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cipherdrop/cipherdrop/internal/client/service"
)

// upload encrypts and shares a local file:
//
//	upload <path> [ttl] [max-downloads]
//
// ttl is a Go duration ("24h", "30m"); max-downloads an integer. Both
// are optional and default to unlimited.
func (a *App) upload(ctx context.Context, args []string) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please login first.")
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: upload <path> [ttl] [max-downloads]")
		return
	}

	opts, err := parseUploadOptions(args[1:])
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	name := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	res, err := a.svc.Upload(ctx, a.userID, a.secret, name, mimeType, data, opts)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	fmt.Fprintln(a.out, "File id:", res.FileID)
	fmt.Fprintln(a.out, "Share link:", res.ShareURL)
}

func parseUploadOptions(args []string) (service.UploadOptions, error) {
	var opts service.UploadOptions
	if len(args) > 0 && args[0] != "0" {
		ttl, err := time.ParseDuration(args[0])
		if err != nil {
			return opts, fmt.Errorf("invalid ttl %q: %w", args[0], err)
		}
		t := time.Now().UTC().Add(ttl)
		opts.ExpiresAt = &t
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid max-downloads %q", args[1])
		}
		opts.MaxDownloads = n
	}
	return opts, nil
}
