package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree creates files below root. Keys ending in "/" create directories.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// scenarioProject builds the canonical fixture: one script, a version file and an icon
func scenarioProject(t *testing.T, parent, name string) string {
	t.Helper()

	root := filepath.Join(parent, name)
	writeTree(t, root, map[string]string{
		"Scripts/":             "",
		"Scripts.meta":         "fileFormatVersion: 2\nguid: GUIDDIR\nfolderAsset: yes\n",
		"Scripts/Foo.txt":      "hello from foo\n",
		"Scripts/Foo.txt.meta": "fileFormatVersion: 2\nguid: GUID123\n",
		"version.txt":          "0.1.0",
		"version.txt.meta":     "fileFormatVersion: 2\nguid: GUIDVER\n",
		".icon.png":            "\x89PNG\r\n\x1a\nicon",
	})
	return root
}
