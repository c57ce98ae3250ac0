package reader

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ztrue/tracerr"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromString(t *testing.T) {
	src := FromString("a.van", "x := 1\r\ny := 'é'\n")

	assert.Equal(t, "a.van", src.Filename)
	assert.Equal(t, []string{"x := 1", "y := 'é'", ""}, src.Lines)
	assert.Equal(t, []rune("x := 1\ny := 'é'\n"), src.Text)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "main.van", "a := 1\nb := 2")

	src, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Filename)
	assert.Equal(t, []string{"a := 1", "b := 2"}, src.Lines)

	_, err = ReadFile(filepath.Join(dir, "missing.van"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(tracerr.Unwrap(err)))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	b := write(t, dir, "b.van", "")
	a := write(t, dir, "a.van", "")
	write(t, dir, "notes.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.van"), 0o755))
	extra := write(t, dir, "extra.vn", "")

	files, err := Scan(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	files, err = Scan(dir, []string{"*.van", "a.*", "*.vn"})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, extra}, files)

	_, err = Scan(dir, []string{"["})
	assert.Error(t, err)
}

func TestReadAll(t *testing.T) {
	dir := t.TempDir()
	a := write(t, dir, "a.van", "a := 1")
	b := write(t, dir, "b.van", "b := 2")

	sources, err := ReadAll([]string{a, b})
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, []string{"b := 2"}, sources[1].Lines)

	_, err = ReadAll([]string{a, filepath.Join(dir, "c.van")})
	assert.Error(t, err)
}
