package blob

import (
	"io/fs"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/workplane-dev/workplane/internal/models"
)

func TestSaveAndPath(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	workplaceID := models.NewWorkplaceID()
	name, err := store.Save(workplaceID, "report.pdf", strings.NewReader("quarterly numbers"))
	require.NoError(t, err)
	require.Equal(t, "report.pdf", name)

	path, err := store.Path(workplaceID, "report.pdf")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "quarterly numbers", string(data))
}

func TestSaveStripsDirectoryComponents(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	workplaceID := models.NewWorkplaceID()
	name, err := store.Save(workplaceID, "../../escape.txt", strings.NewReader("payload"))
	require.NoError(t, err)
	require.Equal(t, "escape.txt", name)

	_, err = store.Path(workplaceID, "escape.txt")
	require.NoError(t, err)
}

func TestPathRefusesEscapeFromRoot(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.path("../outside", "open")
	var pathErr *os.PathError
	require.ErrorAs(t, err, &pathErr)
	require.Equal(t, syscall.EACCES, pathErr.Err)
}

func TestPathMissingFile(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Path(models.NewWorkplaceID(), "missing.txt")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRemoveAll(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	workplaceID := models.NewWorkplaceID()
	_, err = store.Save(workplaceID, "a.txt", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = store.Save(workplaceID, "b.txt", strings.NewReader("b"))
	require.NoError(t, err)

	require.NoError(t, store.RemoveAll(workplaceID))

	_, err = store.Path(workplaceID, "a.txt")
	require.ErrorIs(t, err, fs.ErrNotExist)
}
