package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cipherdrop/cipherdrop/internal/common"
)

// get resolves a share link and writes the decrypted file to the
// current directory:
//
//	get <url>
//
// A login is not required: the link fragment carries the key material.
func (a *App) get(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: get <url>")
		return
	}

	res, err := a.svc.Download(ctx, args[0])
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingKeyMaterial):
			fmt.Fprintln(a.out, "The link is missing its key material. Make sure you copied the full URL including the part after '#'.")
		case errors.Is(err, common.ErrAuthenticationFailed):
			fmt.Fprintln(a.out, "The link is invalid or the file is corrupted.")
		case errors.Is(err, common.ErrLinkExpired):
			fmt.Fprintln(a.out, "This link has expired.")
		case errors.Is(err, common.ErrDownloadLimitReached):
			fmt.Fprintln(a.out, "This link has reached its download limit.")
		case errors.Is(err, common.ErrNotFound):
			fmt.Fprintln(a.out, "File not found. It may have been deleted.")
		default:
			fmt.Fprintln(a.out, "Error:", err)
		}
		return
	}

	name := res.Metadata.Name
	if _, err := os.Stat(name); err == nil {
		fmt.Fprintf(a.out, "File %q already exists, not overwriting.\n", name)
		return
	}
	if err := os.WriteFile(name, res.Data, 0o600); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	fmt.Fprintf(a.out, "Saved %q (%d bytes, %s)\n", name, res.Metadata.Size, res.Metadata.MimeType)
}
