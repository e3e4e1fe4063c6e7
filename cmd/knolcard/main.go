// Command knolcard runs one card engine operation against a SQLite store and
// prints the JSON result.
//
// Usage:
//
//	knolcard [flags] <operation> [json-args]
//	knolcard [flags] import <path|git-url>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"github.com/conorfennell/knolcard/internal/config"
	"github.com/conorfennell/knolcard/internal/dispatch"
	"github.com/conorfennell/knolcard/internal/gitsource"
	"github.com/conorfennell/knolcard/internal/importer"
	"github.com/conorfennell/knolcard/internal/logger"
	"github.com/conorfennell/knolcard/internal/manager"
	"github.com/conorfennell/knolcard/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := config.Flags("knolcard")
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: knolcard [flags] <operation> [json-args]\n")
		fmt.Fprintf(stderr, "       knolcard [flags] import <path|git-url>\n\nOperations:\n")
		// The registry only reaches the manager when an operation is called.
		for _, name := range dispatch.NewRegistry(nil).Names() {
			fmt.Fprintf(stderr, "  %s\n", name)
		}
		fmt.Fprintf(stderr, "\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 2
	}
	logger.Setup(cfg.Log, stderr)

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer db.Close()
	if version, err := db.SchemaVersion(ctx); err == nil {
		slog.Debug("database opened", "path", cfg.Database.Path, "schema_version", version)
	}

	m := manager.New(db, manager.Options{
		HistoryLimit: cfg.Engine.HistoryLimit,
		DueScanLimit: cfg.Engine.DueScanLimit,
	})

	if fs.Arg(0) == "import" {
		return runImport(ctx, m, cfg, fs.Args()[1:], stdout, stderr)
	}

	var raw json.RawMessage
	if fs.NArg() > 1 {
		raw = json.RawMessage(strings.Join(fs.Args()[1:], " "))
	}
	resp := dispatch.NewRegistry(m).Call(ctx, fs.Arg(0), raw)
	if err := writeJSON(stdout, resp); err != nil {
		slog.Error("Failed to write response", "error", err)
		return 1
	}
	if resp.Err != nil {
		return 1
	}
	return 0
}

func runImport(ctx context.Context, m *manager.Manager, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: knolcard import <path|git-url>")
		return 2
	}
	source := args[0]

	var (
		report importer.Report
		err    error
	)
	if gitsource.IsGitURL(source) {
		report, err = importer.ImportGit(ctx, m, source, cfg.Import.ReposDir, stderr)
	} else {
		report, err = importer.ImportPath(ctx, m, source)
	}
	if err != nil {
		slog.Error("Import failed", "source", source, "error", err)
		return 1
	}

	out := struct {
		importer.Report
		Errors []string `json:"errors,omitempty"`
	}{Report: report, Errors: report.Messages()}
	if err := writeJSON(stdout, out); err != nil {
		slog.Error("Failed to write report", "error", err)
		return 1
	}
	return 0
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
