package lattice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONEncode(t *testing.T) {
	wantStrV(t, evalSrc(t, `json_encode([1, "two", nil, true])`), `[1,"two",null,true]`)
	wantStrV(t, evalSrc(t, `flux m = Map::new()
m["a"] = 1
m["b"] = [2, 3]
json_encode(m)`), `{"a":1,"b":[2,3]}`)
	// structs encode as objects
	wantStrV(t, evalSrc(t, `struct P { x: Int, y: Int }
json_encode(P { x: 1, y: 2 })`), `{"x":1,"y":2}`)
	errContains(t, `json_encode(|x| x)`, "cannot serialize")
}

func TestJSONDecode(t *testing.T) {
	wantIntV(t, evalSrc(t, `json_decode("{\"n\": 7}")["n"]`), 7)
	v := evalSrc(t, `json_decode("1.5")`)
	require.Equal(t, VTNum, v.Tag)
	// integral floats come back as Int
	wantIntV(t, evalSrc(t, `json_decode("3.0")`), 3)
	wantNilV(t, evalSrc(t, `json_decode("null")`))
	errContains(t, `json_decode("{oops")`, "json_decode")
}

func TestJSONRoundTripIsFluid(t *testing.T) {
	wantStrV(t, evalSrc(t, `flux xs = freeze([1, 2])
flux back = json_decode(json_encode(xs))
phase_of(back)`), "fluid")
}

func TestTOMLRoundTrip(t *testing.T) {
	out := evalSrc(t, `flux m = Map::new()
m["name"] = "lattice"
m["port"] = 8080
toml_decode(toml_encode(m))`)
	require.Equal(t, VTMap, out.Tag)
	mo := out.Data.(*MapObject)
	name, ok := mo.Get("name")
	require.True(t, ok)
	require.Equal(t, "lattice", name.Data.(string))
	port, _ := mo.Get("port")
	require.Equal(t, int64(8080), port.Data.(int64))
}

func TestYAMLDecode(t *testing.T) {
	wantIntV(t, evalSrc(t, `yaml_decode("a: 1\nb:\n  - 2\n  - 3")["b"][1]`), 3)
	wantStrV(t, evalSrc(t, `yaml_encode([1, 2])`), "- 1\n- 2\n")
}

func TestRegexBuiltins(t *testing.T) {
	wantBoolV(t, evalSrc(t, `regex_match("^a+$", "aaa")`), true)
	wantBoolV(t, evalSrc(t, `regex_match("^a+$", "ab")`), false)
	wantStrV(t, evalSrc(t, `regex_find("(\\d+)-(\\d+)", "id 12-34 x")[1]`), "12")
	wantNilV(t, evalSrc(t, `regex_find("z+", "abc")`))
	wantIntV(t, evalSrc(t, `len(regex_find_all("\\d+", "1 22 333"))`), 3)
	wantStrV(t, evalSrc(t, `regex_replace("\\s+", "a  b   c", "_")`), "a_b_c")
	wantStrV(t, evalSrc(t, `regex_split(",\\s*", "a, b,c")[2]`), "c")
	errContains(t, `regex_match("(", "x")`, "invalid pattern")
}

func TestFileBuiltins(t *testing.T) {
	dir := t.TempDir()
	ipr := NewInterpreter(WithScriptDir(dir))
	src := `flux p = path_join("` + dir + `", "out.txt")
write_file(p, "one")
append_file(p, "+two")
[read_file(p), file_exists(p), file_exists(p + ".missing")]`
	v, err := ipr.EvalSource("test.lat", src)
	require.NoError(t, err)
	elems := v.Data.(*ArrayObject).Elems
	require.Equal(t, "one+two", elems[0].Data.(string))
	require.True(t, elems[1].Data.(bool))
	require.False(t, elems[2].Data.(bool))
}

func TestListDirSorted(t *testing.T) {
	dir := t.TempDir()
	ipr := NewInterpreter()
	_, err := ipr.EvalSource("test.lat", `write_file(path_join("`+dir+`", "b.txt"), "")
write_file(path_join("`+dir+`", "a.txt"), "")`)
	require.NoError(t, err)
	v, err := ipr.EvalSource("test.lat", `list_dir("`+dir+`")`)
	require.NoError(t, err)
	elems := v.Data.(*ArrayObject).Elems
	require.Equal(t, "a.txt", elems[0].Data.(string))
	require.Equal(t, "b.txt", elems[1].Data.(string))
}
