package fingerprint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesDeterministic(t *testing.T) {
	a := Bytes([]byte("func main() {}"))
	b := Bytes([]byte("func main() {}"))
	assert.Equal(t, a, b)

	c := Bytes([]byte("func main() { }"))
	assert.NotEqual(t, a, c)
}

func TestBytesFormat(t *testing.T) {
	fp := Bytes([]byte("hello"))
	assert.Len(t, fp, 16)
	assert.Equal(t, strings.ToLower(fp), fp)
}

func TestFileMatchesBytes(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sample.go")
	content := []byte("package sample\n\nfunc Sample() {}\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	fromFile, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, Bytes(content), fromFile)
}

func TestFileEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "empty")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	fp, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, Bytes(nil), fp)
}

func TestFileMissing(t *testing.T) {
	_, err := File("/nonexistent/path/file.go")
	assert.Error(t, err)
}

func TestReaderMatchesBytes(t *testing.T) {
	content := "const answer = 42"
	fp, err := Reader(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, Bytes([]byte(content)), fp)
}
