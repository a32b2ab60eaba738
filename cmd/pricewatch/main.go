package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/x/term"

	"github.com/five82/pricewatch/internal/app"
	"github.com/five82/pricewatch/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	envFile := flag.String("env", "", "dotenv file to load (optional, defaults to ./.env)")
	query := flag.String("query", "", "search to run on startup (optional)")
	refreshSeconds := flag.Int("refresh", 0, "re-fetch products every N seconds (optional, 0 disables)")
	loginEmail := flag.String("login", "", "exchange credentials for a token and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if email := strings.TrimSpace(*loginEmail); email != "" {
		password, err := loginPassword(*envFile, os.Stdin, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pricewatch: read password: %v\n", err)
			return 1
		}
		err = app.Login(ctx, app.LoginOptions{
			ConfigPath: *configPath,
			EnvFile:    *envFile,
			Email:      email,
			Password:   password,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "pricewatch: %v\n", err)
			return 1
		}
		fmt.Println("Logged in.")
		return 0
	}

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		EnvFile:    *envFile,
		Query:      *query,
	}
	if refresh := *refreshSeconds; refresh > 0 {
		opts.RefreshEvery = refresh
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "pricewatch: %v\n", err)
		return 1
	}
	return 0
}

// loginPassword loads the dotenv file so PRICEWATCH_PASSWORD may come from
// it, then reads the password.
func loginPassword(envFile string, in *os.File, prompt io.Writer) (string, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return "", err
	}
	return readPassword(in, prompt)
}

// readPassword takes the password from PRICEWATCH_PASSWORD, from the
// terminal with echo off, or from the first line of piped input.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	if pw := os.Getenv("PRICEWATCH_PASSWORD"); pw != "" {
		return pw, nil
	}
	if term.IsTerminal(in.Fd()) {
		fmt.Fprint(prompt, "Password: ")
		pw, err := term.ReadPassword(in.Fd())
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
