// Command seedadmin creates or verifies the bootstrap admin account against
// the configured database. The password is read from the terminal without
// echo unless one is already present in the configuration.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jbtolen/wastesort/internal/logging"
	"github.com/jbtolen/wastesort/internal/server/auth"
	"github.com/jbtolen/wastesort/internal/server/config"
	"github.com/jbtolen/wastesort/internal/server/store"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

func getSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprintf(w, "%s\n> ", prompt); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func getPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func run(ctx context.Context, cfg *config.Config, in *bufio.Reader, out io.Writer) error {
	if cfg.AdminEmail == "" {
		email, err := getSimpleText(in, "Enter admin email", out)
		if err != nil {
			return err
		}
		cfg.AdminEmail = email
	}

	if cfg.AdminPassword == "" {
		pw, err := getPassword(out)
		if err != nil {
			return err
		}
		cfg.AdminPassword = string(pw)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(out, nil)))

	st, err := store.Open(ctx, cfg.DatabaseDSN, logger)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer st.Close()

	profile, err := auth.NewService(st, cfg, logger).SeedAdmin(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "admin account ready: %s\n", profile.Email)
	return nil
}

func main() {
	cfg := config.LoadConfig()

	if err := run(context.Background(), cfg, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}
