package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/cipherdrop/cipherdrop/internal/index"
)

func (a *App) list(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please login first.")
		return
	}

	records, err := a.svc.List(ctx, a.userID, a.secret)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No files yet.")
		return
	}

	for _, r := range records {
		fmt.Fprintln(a.out, formatRecord(r))
	}
}

func formatRecord(r index.FileRecord) string {
	s := fmt.Sprintf("%s  %s  %d bytes  uploaded %s",
		r.FileID, r.Name, r.Size, r.UploadedAt.Format(time.RFC3339))
	if r.ExpiresAt != nil {
		s += fmt.Sprintf("  expires %s", r.ExpiresAt.Format(time.RFC3339))
	}
	if r.MaxDownloads > 0 {
		s += fmt.Sprintf("  downloads %d/%d", r.Downloads, r.MaxDownloads)
	} else if r.Downloads > 0 {
		s += fmt.Sprintf("  downloads %d", r.Downloads)
	}
	return s
}
