package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/conorfennell/knolcard/internal/manager"
	"github.com/conorfennell/knolcard/internal/parser"
	"github.com/conorfennell/knolcard/internal/storage"
)

func newManager(t *testing.T) *manager.Manager {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return manager.New(db, manager.Options{})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFrontText(t *testing.T) {
	assert.Equal(t, "What is 1+1?", FrontText(parser.Block{Question: "What is 1+1?"}))
	assert.Equal(t, "What is 1+1?\nArithmetic", FrontText(parser.Block{Question: "What is 1+1?", Context: "Arithmetic"}))
}

func TestImportPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "geo.md"), "Q: Capital of France?\nA: Paris\n\nQ: Capital of Spain?\nA: Madrid\nC: Europe\n")
	writeFile(t, filepath.Join(root, "nested", "math.MD"), "Q: 2+2?\nA:\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "Q: ignored\nA: ignored\n")
	writeFile(t, filepath.Join(root, ".git", "deck.md"), "Q: ignored\nA: ignored\n")

	m := newManager(t)
	report, err := ImportPath(context.Background(), m, root)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.True(t, errors.Is(report.Errors[0], domain.ErrValidation))
	assert.Contains(t, report.Messages()[0], "math.MD:1")

	card, err := m.GetCard(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Capital of Spain?\nEurope", card.TextFront)
	assert.Equal(t, "Madrid", card.TextBack)
}

func TestImportSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.md")
	writeFile(t, path, "Q: a\nA: b\n")

	report, err := ImportPath(context.Background(), newManager(t), path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Empty(t, report.Errors)
}

func TestImportMissingPath(t *testing.T) {
	_, err := ImportPath(context.Background(), newManager(t), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

type failingCreator struct{}

func (failingCreator) CreateCard(context.Context, string, string) (domain.Projection, error) {
	return domain.Projection{}, &domain.Error{Kind: domain.KindStorage, Code: domain.CodeStorage, Message: "disk full"}
}

func TestImportAbortsOnStorageError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "deck.md"), "Q: a\nA: b\n")

	report, err := ImportPath(context.Background(), failingCreator{}, root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorage))
	assert.Zero(t, report.Created)
}

func TestImportGitRejectsBadURL(t *testing.T) {
	_, err := ImportGit(context.Background(), newManager(t), "not a url", t.TempDir(), nil)
	assert.Error(t, err)
}
