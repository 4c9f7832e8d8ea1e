// CLI tool to set up the single login: hashes a password with bcrypt and
// prints the .env lines to use. Also seeds the default body profile in the
// configured store if none is saved yet.
// Usage: go run ./cmd/create-user (from the repo root)
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/katsunarinishio0430-cmd/biolog-app/config"
	"github.com/katsunarinishio0430-cmd/biolog-app/store"
	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	username, password, err := prompt(os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	lines, err := envLines(username, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, store.Options{
		Backend:    cfg.StoreBackend,
		DSN:        cfg.DBURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	seeded, err := seedProfile(ctx, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nCredentials ready. Add these lines to .env:\n\n%s\n", lines)
	if seeded {
		fmt.Println("Default profile saved (70 kg, 170 cm, 30 y, male, moderate).")
	}
}

// prompt reads a username and password, one per line.
func prompt(in io.Reader, out io.Writer) (string, string, error) {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Fprint(out, "Password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	if username == "" || password == "" {
		return "", "", fmt.Errorf("username and password are required")
	}
	return username, password, nil
}

// envLines renders the login settings for .env. The hash is single-quoted so
// godotenv does not expand the $ segments.
func envLines(username, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# generated %s\n", uuid.NewString())
	fmt.Fprintf(&b, "BIOLOG_USERNAME=%s\n", username)
	fmt.Fprintf(&b, "BIOLOG_PASSWORD_HASH='%s'\n", hash)
	return b.String(), nil
}

// seedProfile saves the default profile unless one is already stored.
func seedProfile(ctx context.Context, st store.Store) (bool, error) {
	rows, err := st.ReadAll(ctx, store.TableProfile)
	if err != nil {
		return false, err
	}
	if len(rows) > 0 {
		return false, nil
	}
	svc := tracker.New(st, nil)
	if err := svc.SaveProfile(ctx, tracker.DefaultProfile()); err != nil {
		return false, err
	}
	return true, nil
}
