package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func collectFiles(t *testing.T, opts WalkOptions) []FileInfo {
	t.Helper()
	w, err := NewFileWalker(opts)
	require.NoError(t, err)

	var files []FileInfo
	err = w.Walk(func(fi FileInfo) error {
		files = append(files, fi)
		return nil
	})
	require.NoError(t, err)
	return files
}

func relPaths(files []FileInfo) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelPath
	}
	return paths
}

func TestWalkFindsSourceFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "main.go", "package main\n")
	writeFile(t, tmpDir, "lib/util.ts", "export const x = 1\n")
	writeFile(t, tmpDir, "README.md", "# readme\n")

	opts := DefaultWalkOptions()
	opts.Root = tmpDir
	files := collectFiles(t, opts)

	paths := relPaths(files)
	assert.Contains(t, paths, "main.go")
	assert.Contains(t, paths, filepath.Join("lib", "util.ts"))
	// Markdown is not source code
	assert.NotContains(t, paths, "README.md")
}

func TestWalkPopulatesFingerprint(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "main.go", "package main\n")

	opts := DefaultWalkOptions()
	opts.Root = tmpDir
	files := collectFiles(t, opts)

	require.Len(t, files, 1)
	assert.Len(t, files[0].Fingerprint, 16)
	assert.Equal(t, LangGo, files[0].Language)
	assert.Equal(t, int64(13), files[0].Size)
}

func TestWalkRespectsGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".gitignore", "ignored/\nsecret.go\n")
	writeFile(t, tmpDir, "kept.go", "package kept\n")
	writeFile(t, tmpDir, "secret.go", "package secret\n")
	writeFile(t, tmpDir, "ignored/deep.go", "package deep\n")

	opts := DefaultWalkOptions()
	opts.Root = tmpDir
	files := collectFiles(t, opts)

	paths := relPaths(files)
	assert.Contains(t, paths, "kept.go")
	assert.NotContains(t, paths, "secret.go")
	assert.NotContains(t, paths, filepath.Join("ignored", "deep.go"))
}

func TestWalkSkipsLowValueNames(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "handler.go", "package handler\n")
	writeFile(t, tmpDir, "handler_test.go", "package handler\n")
	writeFile(t, tmpDir, "button.stories.tsx", "export default {}\n")
	writeFile(t, tmpDir, "api.types.ts", "export type A = {}\n")
	writeFile(t, tmpDir, "messages.i18n.ts", "export const m = {}\n")

	opts := DefaultWalkOptions()
	opts.Root = tmpDir
	files := collectFiles(t, opts)

	paths := relPaths(files)
	assert.Equal(t, []string{"handler.go"}, paths)
}

func TestWalkSkipsHiddenAndDotGit(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".git/config.go", "package config\n")
	writeFile(t, tmpDir, ".hidden/tool.go", "package tool\n")
	writeFile(t, tmpDir, "visible.go", "package visible\n")

	opts := DefaultWalkOptions()
	opts.Root = tmpDir
	files := collectFiles(t, opts)

	assert.Equal(t, []string{"visible.go"}, relPaths(files))
}

func TestWalkSkipsBinaryFiles(t *testing.T) {
	tmpDir := t.TempDir()
	binPath := filepath.Join(tmpDir, "blob.c")
	require.NoError(t, os.WriteFile(binPath, []byte{0x7f, 0x45, 0x4c, 0x46, 0x00, 0x01}, 0644))
	writeFile(t, tmpDir, "real.c", "int main() { return 0; }\n")

	opts := DefaultWalkOptions()
	opts.Root = tmpDir
	files := collectFiles(t, opts)

	assert.Equal(t, []string{"real.c"}, relPaths(files))
}

func TestWalkMaxFileSize(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "small.go", "package small\n")

	// big.go padded past the limit
	big := make([]byte, 2048)
	copy(big, []byte("package big\n"))
	for i := len("package big\n"); i < len(big); i++ {
		big[i] = ' '
	}
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "big.go"), big, 0644))

	opts := DefaultWalkOptions()
	opts.Root = tmpDir
	opts.MaxFileSize = 1024
	files := collectFiles(t, opts)

	assert.Equal(t, []string{"small.go"}, relPaths(files))

	w, err := NewFileWalker(opts)
	require.NoError(t, err)
	require.NoError(t, w.Walk(func(FileInfo) error { return nil }))
	stats := w.Stats()
	assert.Equal(t, 1, stats.FilesFound)
	assert.GreaterOrEqual(t, stats.FilesSkipped, 1)
}

func TestWalkRootMissing(t *testing.T) {
	opts := DefaultWalkOptions()
	opts.Root = "/nonexistent/root/path"
	_, err := NewFileWalker(opts)
	assert.Error(t, err)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, LangGo, DetectLanguage("cmd/main.go"))
	assert.Equal(t, LangTypeScript, DetectLanguage("src/app.tsx"))
	assert.Equal(t, LangPython, DetectLanguage("scripts/run.py"))
	assert.Equal(t, LangRust, DetectLanguage("src/lib.rs"))
	assert.Equal(t, LangUnknown, DetectLanguage("README.md"))
	assert.Equal(t, LangUnknown, DetectLanguage("photo.png"))
}

func TestIsLowValueName(t *testing.T) {
	assert.True(t, IsLowValueName("foo_test.go"))
	assert.True(t, IsLowValueName("app.spec.ts"))
	assert.True(t, IsLowValueName("user.mock.ts"))
	assert.True(t, IsLowValueName("theme.styles.ts"))
	assert.True(t, IsLowValueName("api.generated.go"))
	assert.False(t, IsLowValueName("handler.go"))
	assert.False(t, IsLowValueName("service.ts"))
}
