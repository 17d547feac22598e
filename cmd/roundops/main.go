package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abrezinsky/roundops/internal/app"
	"github.com/abrezinsky/roundops/internal/auth"
	"github.com/abrezinsky/roundops/internal/browser"
	"github.com/abrezinsky/roundops/internal/config"
	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var version = "dev"

var logo = []string{
	"     ____                       _  ___                ",
	"    |  _ \\ ___  _   _ _ __   __| |/ _ \\ _ __  ___     ",
	"    | |_) / _ \\| | | | '_ \\ / _` | | | | '_ \\/ __|    ",
	"    |  _ < (_) | |_| | | | | (_| | |_| | |_) \\__ \\    ",
	"    |_| \\_\\___/ \\__,_|_| |_|\\__,_|\\___/| .__/|___/    ",
	"                                       |_|            ",
}

// showBanner prints the boxed logo with the version underneath
func showBanner(out io.Writer) {
	const width = 62
	border := strings.Repeat("═", width)

	fmt.Fprintf(out, "\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		if len(line) < width {
			line += strings.Repeat(" ", width-len(line))
		}
		fmt.Fprintf(out, "  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Fprintf(out, "  %s╚%s╝%s\n", cyan, border, reset)
	fmt.Fprintf(out, "  %sfestival round operations %s%s\n\n", bold, version, reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp(out io.Writer) {
	fmt.Fprintf(out, "\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(out, "    %sa%s      - Open dashboard in browser\n", cyan, reset)
	fmt.Fprintf(out, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(out, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(out, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(out, "    %s?%s      - Show this help\n\n", cyan, reset)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "%sroundops: %v%s\n", red, err, reset)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		fmt.Printf("roundops %s\n", version)
		return nil
	}

	// Raw terminal mode drops output post-processing, so every line printed
	// while the keyboard is active needs an explicit carriage return.
	var out io.Writer = os.Stdout
	if !cfg.NoKeyboard {
		out = crlfWriter{w: os.Stdout}
	}

	if !cfg.NoBanner {
		showBanner(out)
	}

	password := cfg.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	appLog := logger.NewWithWriter(out, logger.ParseLevel(cfg.LogLevel))

	client := eventsapi.NewHTTPClient(cfg.EventsURL, cfg.EventsSecret, appLog)

	a, err := app.New(appLog, cfg, client, adminAuth)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	appLog.Info("Operator password", "password", password)
	appLog.Info("Events backend", "url", client.BaseURL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(cfg.Addr())
	}()

	dashboardURL := browser.DashboardURL(cfg.Port)
	if cfg.OpenBrowser {
		if err := browser.Open(dashboardURL); err != nil {
			appLog.Warn("Failed to open browser", "error", err)
		}
	}

	if !cfg.NoKeyboard {
		kb := &keyboard{
			log:          appLog,
			dashboardURL: dashboardURL,
			open:         browser.Open,
			quit:         cancel,
			out:          out,
		}
		restore, err := kb.start(os.Stdin)
		if err != nil {
			appLog.Warn("Keyboard shortcuts unavailable", "error", err)
		} else {
			defer restore()
			printKeyboardHelp(out)
		}
	} else {
		fmt.Fprintf(out, "\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Fprintf(out, "%sShutting down server...%s\n", yellow, reset)
	a.Close()
	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
