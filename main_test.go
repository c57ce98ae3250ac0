package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/coreos/pkg/multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontaoski/van/driver"
	"github.com/pontaoski/van/reader"
)

func TestTypeInfoRoundTrip(t *testing.T) {
	res, err := driver.Check(reader.FromString("shapes.van", `
struct Point { x: number y: number }
origin := new Point { x = 0 y = 0 }
fun area w: number h: number -> number { w * h }
`))
	require.NoError(t, err)

	info := collectTypeInfo("shapes", res.Visitor)
	assert.Equal(t, "shapes", info.Package)
	assert.Equal(t, "fun number number -> number", info.Bindings["area"])
	assert.Contains(t, info.Structs, "Point")
	assert.Contains(t, info.Bindings, "print")

	path := filepath.Join(t.TempDir(), "shapes.json")
	require.NoError(t, writeTypeInfo(path, info))

	back, err := getTypeInfoFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, info, back)
}

func TestCheckFilesAggregates(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.van")
	bad1 := filepath.Join(dir, "bad1.van")
	bad2 := filepath.Join(dir, "bad2.van")
	require.NoError(t, ioutil.WriteFile(good, []byte("a := 1\n"), 0o644))
	require.NoError(t, ioutil.WriteFile(bad1, []byte("b := a\n"), 0o644))
	require.NoError(t, ioutil.WriteFile(bad2, []byte("c := (1\n"), 0o644))

	assert.NoError(t, checkFiles([]string{good}, false, false))

	err := checkFiles([]string{good, bad1, bad2}, false, false)
	require.Error(t, err)
	errs, ok := err.(multierror.Error)
	require.True(t, ok, "got %T", err)
	assert.Len(t, errs, 2)

	assert.NoError(t, checkFiles([]string{good, bad1}, true, false))

	err = checkFiles([]string{bad2, good}, true, false)
	require.Error(t, err)
	assert.Len(t, err.(multierror.Error), 1)
}
