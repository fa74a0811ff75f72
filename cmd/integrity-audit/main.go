package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/forgo/setlist/api/internal/config"
	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/repository"
	"github.com/forgo/setlist/api/internal/service"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the audit and returns the process exit code. Deferred
// cleanup has finished by the time it returns.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("integrity-audit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a YAML config file (overrides CONFIG_PATH)")
	repair := fs.Bool("repair", false, "Repair the references that were found")
	timeout := fs.Duration("timeout", 10*time.Minute, "Give up after this long")
	outputJSON := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := database.Open(ctx, cfg.Database.StoreConfig())
	if err != nil {
		fmt.Fprintf(stderr, "Error opening %s store: %v\n", cfg.Database.Driver, err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(stderr, "Error closing store: %v\n", err)
		}
	}()

	bandRepo := repository.NewBandRepository(store)
	concertRepo := repository.NewConcertRepository(store)
	userRepo := repository.NewUserRepository(store)

	audit := service.NewAuditService(service.AuditServiceConfig{
		BandRepo:    bandRepo,
		ConcertRepo: concertRepo,
		UserRepo:    userRepo,
		Engine: service.NewIntegrityEngine(service.IntegrityEngineConfig{
			BandRepo:    bandRepo,
			ConcertRepo: concertRepo,
			UserRepo:    userRepo,
		}),
	})

	report, err := audit.Run(ctx, *repair)
	if err != nil {
		fmt.Fprintf(stderr, "Audit failed: %v\n", err)
		return 1
	}

	if *outputJSON {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(stdout, string(out))
	} else {
		printReport(stdout, report)
	}

	// Unrepaired findings fail the run so it can gate a deploy
	for _, f := range report.Findings {
		if !f.Repaired {
			return 2
		}
	}
	return 0
}

func printReport(w io.Writer, report *service.AuditReport) {
	fmt.Fprintln(w, "Integrity Audit")
	fmt.Fprintln(w, "===============")
	fmt.Fprintf(w, "Bands:    %d\n", report.Bands)
	fmt.Fprintf(w, "Concerts: %d\n", report.Concerts)
	fmt.Fprintf(w, "Users:    %d\n", report.Users)
	fmt.Fprintf(w, "Findings: %d\n", len(report.Findings))
	for _, f := range report.Findings {
		status := "found"
		if f.Repaired {
			status = "repaired"
		} else if f.Error != "" {
			status = "repair failed: " + f.Error
		}
		fmt.Fprintf(w, "  %-20s band=%d concert=%d user=%d  %s\n", f.Kind, f.BandID, f.ConcertID, f.UserID, status)
	}
}
