// Package importer creates cards from markdown decks on disk or in git repositories.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/conorfennell/knolcard/internal/gitsource"
	"github.com/conorfennell/knolcard/internal/knol"
	"github.com/conorfennell/knolcard/internal/parser"
)

// CardCreator is the part of the manager the importer needs.
type CardCreator interface {
	CreateCard(ctx context.Context, front, back string) (domain.Projection, error)
}

// Report summarises one import run.
type Report struct {
	Created int     `json:"created"`
	Skipped int     `json:"skipped"`
	Errors  []error `json:"-"`
}

// Messages returns the collected errors as strings, for printing.
func (r Report) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		out = append(out, err.Error())
	}
	return out
}

// FrontText builds the front of a card from a parsed block. Context, when
// present, follows the question on its own line.
func FrontText(b parser.Block) string {
	if knol.IsBlank(b.Context) {
		return b.Question
	}
	return b.Question + "\n" + b.Context
}

// ImportPath walks root for .md files and creates one card per block.
// Blocks the manager rejects are skipped and reported; storage failures abort
// the run.
func ImportPath(ctx context.Context, c CardCreator, root string) (Report, error) {
	var report Report
	info, err := os.Stat(root)
	if err != nil {
		return report, fmt.Errorf("error checking path %s: %w", root, err)
	}
	if !info.IsDir() {
		return report, importFile(ctx, c, root, &report)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		return importFile(ctx, c, path, &report)
	})
	if err != nil {
		return report, err
	}

	slog.Info("import complete",
		"path", root,
		"created", report.Created,
		"skipped", report.Skipped,
		"errors", len(report.Errors),
	)
	return report, nil
}

func importFile(ctx context.Context, c CardCreator, path string, report *Report) error {
	blocks, err := parser.ParseFile(path)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Errorf("parsing %s: %w", path, err))
		return nil
	}
	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := c.CreateCard(ctx, FrontText(b), b.Answer)
		switch {
		case err == nil:
			report.Created++
		case errors.Is(err, domain.ErrValidation):
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Errorf("%s:%d: %w", path, b.Line, err))
		default:
			return fmt.Errorf("%s:%d: %w", path, b.Line, err)
		}
	}
	return nil
}

// ImportGit clones or pulls repoURL under reposDir and imports the checkout.
func ImportGit(ctx context.Context, c CardCreator, repoURL, reposDir string, progress io.Writer) (Report, error) {
	localPath, err := gitsource.LocalPath(reposDir, repoURL)
	if err != nil {
		return Report{}, err
	}
	if err := gitsource.Sync(ctx, repoURL, localPath, progress); err != nil {
		return Report{}, err
	}
	return ImportPath(ctx, c, localPath)
}
