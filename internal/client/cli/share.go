package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/cipherdrop/cipherdrop/internal/common"
)

// link re-derives the share URL for a file already in the index:
//
//	link <id>
func (a *App) link(ctx context.Context, args []string) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please login first.")
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: link <id>")
		return
	}

	url, err := a.svc.ShareLink(ctx, a.userID, a.secret, args[0])
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			fmt.Fprintln(a.out, "No such file in your index.")
		} else {
			fmt.Fprintln(a.out, "Error:", err)
		}
		return
	}

	fmt.Fprintln(a.out, url)
}

// delete removes a file everywhere: ciphertext, metadata row, index
// record. Existing share links stop working immediately.
//
//	delete <id>
func (a *App) delete(ctx context.Context, args []string) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please login first.")
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: delete <id>")
		return
	}

	if err := a.svc.Delete(ctx, a.userID, a.secret, args[0]); err != nil {
		if errors.Is(err, common.ErrConcurrentModification) {
			fmt.Fprintln(a.out, "Your index changed in another session, please retry.")
		} else {
			fmt.Fprintln(a.out, "Error:", err)
		}
		return
	}

	fmt.Fprintln(a.out, "Deleted.")
}

// purge removes expired files and their ciphertext.
func (a *App) purge(ctx context.Context) {
	n, err := a.svc.PurgeExpired(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintf(a.out, "Purged %d expired file(s).\n", n)
}
