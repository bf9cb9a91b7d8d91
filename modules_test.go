package lattice

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestImportExportsBindings(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "util.lat", `fix greeting = "hi"
fn double(x) { x * 2 }
flux _secret = 42`)

	ipr := NewInterpreter(WithScriptDir(dir))
	v, err := ipr.EvalSource("main.lat", `import "util.lat"
[util["greeting"], util["double"](21)]`)
	require.NoError(t, err)
	elems := v.Data.(*ArrayObject).Elems
	require.Equal(t, "hi", elems[0].Data.(string))
	require.Equal(t, int64(42), elems[1].Data.(int64))
}

func TestImportAlias(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "util.lat", `fix n = 1`)

	ipr := NewInterpreter(WithScriptDir(dir))
	v, err := ipr.EvalSource("main.lat", `import "util.lat" as u
u["n"]`)
	require.NoError(t, err)
	require.Equal(t, int64(1), v.Data.(int64))
}

func TestImportedModuleIsCrystal(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "util.lat", `fix n = 1`)

	ipr := NewInterpreter(WithScriptDir(dir))
	v, err := ipr.EvalSource("main.lat", `import "util.lat"
phase_of(util)`)
	require.NoError(t, err)
	require.Equal(t, "crystal", v.Data.(string))

	_, err = NewInterpreter(WithScriptDir(dir)).EvalSource("main.lat", `import "util.lat"
util["n"] = 2`)
	require.Error(t, err)
}

func TestImportSkipsUnderscoreNames(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "util.lat", `flux _hidden = 1
fix shown = 2`)

	ipr := NewInterpreter(WithScriptDir(dir))
	v, err := ipr.EvalSource("main.lat", `import "util.lat"
util["_hidden"]`)
	require.NoError(t, err)
	require.Equal(t, VTNil, v.Tag)
}

func TestImportRunsOnce(t *testing.T) {
	dir := t.TempDir()
	counter := filepath.Join(dir, "count.txt")
	writeScript(t, dir, "util.lat", `append_file("`+counter+`", "x")
fix n = 1`)

	ipr := NewInterpreter(WithScriptDir(dir))
	_, err := ipr.EvalSource("main.lat", `import "util.lat"
import "util.lat" as again
[util["n"], again["n"]]`)
	require.NoError(t, err)
	data, err := os.ReadFile(counter)
	require.NoError(t, err)
	require.Equal(t, "x", string(data))
}

func TestImportCycleDetected(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.lat", `import "b.lat"`)
	writeScript(t, dir, "b.lat", `import "a.lat"`)

	ipr := NewInterpreter(WithScriptDir(dir))
	_, err := ipr.EvalSource("main.lat", `import "a.lat"`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "import cycle detected")
}

func TestNestedImportResolvesRelative(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, filepath.Join("lib", "inner.lat"), `fix n = 7`)
	writeScript(t, dir, filepath.Join("lib", "outer.lat"), `import "inner.lat"
fix n = inner["n"]`)

	ipr := NewInterpreter(WithScriptDir(dir))
	v, err := ipr.EvalSource("main.lat", `import "lib/outer.lat" as o
o["n"]`)
	require.NoError(t, err)
	require.Equal(t, int64(7), v.Data.(int64))
}

func TestImportMissingFile(t *testing.T) {
	ipr := NewInterpreter(WithScriptDir(t.TempDir()))
	_, err := ipr.EvalSource("main.lat", `import "nope.lat"`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "import 'nope.lat'")
}

func TestEvalFileSetsScriptDir(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "util.lat", `fix n = 3`)
	main := writeScript(t, dir, "main.lat", `import "util.lat"
util["n"]`)

	ipr := NewInterpreter()
	v, err := ipr.EvalFile(main)
	require.NoError(t, err)
	require.Equal(t, int64(3), v.Data.(int64))
}
