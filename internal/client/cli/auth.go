package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/cipherdrop/cipherdrop/internal/common"
)

// getSimpleText and getPassphrase are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped
// in tests.
var getSimpleText = GetSimpleText
var getPassphrase = GetPassphrase

// login prompts for a user id and passphrase and verifies the pair by
// opening the user's index. A user with no index yet is accepted as-is:
// the index is created on first upload and the passphrase entered here
// becomes its key.
//
// The previous session's secret, if any, is wiped first.
func (a *App) login(ctx context.Context) {
	userID, err := getSimpleText(a.reader, "Enter user id", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	secret, err := getPassphrase(a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	if _, err := a.svc.List(ctx, userID, secret); err != nil {
		common.WipeByteArray(secret)
		if errors.Is(err, common.ErrIncorrectSecret) {
			fmt.Fprintln(a.out, "Incorrect passphrase, try again.")
		} else {
			fmt.Fprintln(a.out, "Error:", err)
		}
		return
	}

	a.logout()
	a.userID = userID
	a.secret = secret
	fmt.Fprintln(a.out, "Logged in.")
}
