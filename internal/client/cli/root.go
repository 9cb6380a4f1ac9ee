package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	if a.userID == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userID)
}

// Root runs the interactive loop. It reads a line, parses the first
// token as the command, and dispatches to handler methods. The loop
// exits on EOF or when the user types "exit" or "quit".
func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to CipherDrop CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(a.reader)

	a.login(ctx)

	for {
		fmt.Fprintf(a.out, "cdrop %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: upload <path> [ttl] [max-downloads], (l)ist, get <url>, link <id>, delete <id>, purge, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: login, get <url>, exit")
			}

		case "login":
			a.login(ctx)
		case "logout":
			a.logout()
		case "upload":
			a.upload(ctx, args)
		case "l", "list":
			a.list(ctx)
		case "get":
			a.get(ctx, args)
		case "link":
			a.link(ctx, args)
		case "delete":
			a.delete(ctx, args)
		case "purge":
			a.purge(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}
