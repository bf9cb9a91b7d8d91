package lattice

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteExecAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ipr := NewInterpreter()
	v, err := ipr.EvalSource("test.lat", `flux db = sqlite_open("`+path+`")
db.exec("create table kv (k text primary key, v integer)")
db.exec("insert into kv (k, v) values (?, ?)", "a", 1)
db.exec("insert into kv (k, v) values (?, ?)", "b", 2)
flux rows = db.query("select k, v from kv order by k")
flux one = db.query_one("select v from kv where k = ?", "b")
flux missing = db.query_one("select v from kv where k = ?", "zzz")
db.close()
[len(rows), rows[0]["k"], rows[1]["v"], one["v"], missing]`)
	require.NoError(t, err)
	elems := v.Data.(*ArrayObject).Elems
	require.Equal(t, int64(2), elems[0].Data.(int64))
	require.Equal(t, "a", elems[1].Data.(string))
	require.Equal(t, int64(2), elems[2].Data.(int64))
	require.Equal(t, int64(2), elems[3].Data.(int64))
	require.Equal(t, VTNil, elems[4].Tag)
}

func TestSQLiteExecReturnsAffectedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ipr := NewInterpreter()
	v, err := ipr.EvalSource("test.lat", `flux db = sqlite_open("`+path+`")
db.exec("create table n (x integer)")
db.exec("insert into n values (1), (2), (3)")
flux changed = db.exec("update n set x = x + 1 where x > 1")
db.close()
changed`)
	require.NoError(t, err)
	require.Equal(t, int64(2), v.Data.(int64))
}

func TestSQLiteErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ipr := NewInterpreter()
	_, err := ipr.EvalSource("test.lat", `flux db = sqlite_open("`+path+`")
db.exec("not sql at all")`)
	require.Error(t, err)

	_, err = ipr.EvalSource("test.lat", `flux db = sqlite_open("`+path+`")
db.frobnicate()`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown method")
}

func TestSQLiteBindRejectsComposites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ipr := NewInterpreter()
	_, err := ipr.EvalSource("test.lat", `flux db = sqlite_open("`+path+`")
db.exec("create table n (x integer)")
db.exec("insert into n values (?)", [1, 2])`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot bind")
}
