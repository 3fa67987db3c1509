package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/upkg/internal/core/domain"
)

func TestResolver_File(t *testing.T) {
	t.Parallel()

	root := scenarioProject(t, t.TempDir(), "Proj")
	r := NewResolver(root, "")

	record, err := r.Resolve(filepath.Join(root, "Scripts", "Foo.txt"))
	require.NoError(t, err)

	assert.Equal(t, "GUID123", record.Identifier)
	assert.Equal(t, "Scripts/Foo.txt", record.LogicalPath)
	assert.Equal(t, "fileFormatVersion: 2\nguid: GUID123\n", string(record.Meta))
	assert.False(t, record.IsDirectory())

	content, ok := record.Content()
	require.True(t, ok)
	assert.Equal(t, "hello from foo\n", string(content))
	assert.Len(t, record.Blobs(), 3)
}

func TestResolver_Directory(t *testing.T) {
	t.Parallel()

	root := scenarioProject(t, t.TempDir(), "Proj")
	r := NewResolver(root, "")

	record, err := r.Resolve(filepath.Join(root, "Scripts"))
	require.NoError(t, err)

	assert.Equal(t, "GUIDDIR", record.Identifier)
	assert.Equal(t, "Scripts", record.LogicalPath)
	assert.True(t, record.IsDirectory())
	assert.Len(t, record.Blobs(), 2)
}

func TestResolver_PathRootAboveProject(t *testing.T) {
	t.Parallel()

	repo := t.TempDir()
	root := scenarioProject(t, filepath.Join(repo, "Assets", "Vendor"), "Proj")
	r := NewResolver(repo, "")

	record, err := r.Resolve(filepath.Join(root, "Scripts", "Foo.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Assets/Vendor/Proj/Scripts/Foo.txt", record.LogicalPath)
}

func TestResolver_CustomSuffix(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.bin":         "x",
		"a.bin.sidecar": "guid: SIDE\n",
	})

	record, err := NewResolver(root, ".sidecar").Resolve(filepath.Join(root, "a.bin"))
	require.NoError(t, err)
	assert.Equal(t, "SIDE", record.Identifier)
}

func TestResolver_Errors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"nometa.txt":       "x",
		"badmeta.txt":      "x",
		"badmeta.txt.meta": "guid: [broken\n",
		"noguid.txt":       "x",
		"noguid.txt.meta":  "fileFormatVersion: 2\n",
		"orphan.txt.meta":  "guid: ORPHAN\n",
	})
	r := NewResolver(root, "")

	tests := []struct {
		name  string
		entry string
		want  error
	}{
		{"missing sidecar", "nometa.txt", domain.ErrMissingMetadata},
		{"unparsable sidecar", "badmeta.txt", domain.ErrMalformedMetadata},
		{"sidecar without guid", "noguid.txt", domain.ErrMalformedMetadata},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(filepath.Join(root, tt.entry))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("entry vanished", func(t *testing.T) {
		_, err := r.Resolve(filepath.Join(root, "orphan.txt"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("outside path root", func(t *testing.T) {
		_, err := NewResolver(filepath.Join(root, "sub"), "").Resolve(filepath.Join(root, "nometa.txt"))
		require.Error(t, err)
	})
}

func TestResolver_RecordsDoNotShareBytes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":      "same",
		"a.txt.meta": "guid: A\n",
		"b.txt":      "same",
		"b.txt.meta": "guid: B\n",
	})
	r := NewResolver(root, "")

	a, err := r.Resolve(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	b, err := r.Resolve(filepath.Join(root, "b.txt"))
	require.NoError(t, err)

	ac, _ := a.Content()
	ac[0] = 'X'
	bc, _ := b.Content()
	assert.Equal(t, "same", string(bc))
}
