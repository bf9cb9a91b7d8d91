// builtin_sqlite.go: embedded SQLite support. A database connection is a
// handle value; queries and statements run through handle methods.
package lattice

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

func registerSQLiteBuiltins(ip *Interpreter) {
	ip.defineBuiltin("sqlite_open", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "sqlite_open")
		path := wantStr(args[0], "sqlite_open path")
		db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
		if err != nil {
			fail("sqlite_open: " + err.Error())
		}
		if err := db.Ping(); err != nil {
			db.Close()
			fail("sqlite_open: " + err.Error())
		}
		return HandleVal("sqlite", db)
	})
}

// driverArgs lowers scalar Values into database/sql bind parameters.
func driverArgs(args []Value, what string) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		switch a.Tag {
		case VTNil:
			out[i] = nil
		case VTBool:
			out[i] = a.Data.(bool)
		case VTInt:
			out[i] = a.Data.(int64)
		case VTNum:
			out[i] = a.Data.(float64)
		case VTStr:
			out[i] = a.Data.(string)
		default:
			failUsage(fmt.Sprintf("%s: cannot bind %s as a query parameter", what, TypeName(a)))
		}
	}
	return out
}

func sqliteQuery(db *sql.DB, query string, params []Value) Value {
	rows, err := db.Query(query, driverArgs(params, "query")...)
	if err != nil {
		fail("query: " + err.Error())
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		fail("query: " + err.Error())
	}

	var out []Value
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		dst := make([]interface{}, len(cols))
		for i := range raw {
			dst[i] = &raw[i]
		}
		if err := rows.Scan(dst...); err != nil {
			fail("query: " + err.Error())
		}
		row := make(map[string]Value, len(cols))
		for i, c := range cols {
			row[c] = sqliteCell(raw[i])
		}
		out = append(out, MapFrom(row))
	}
	if err := rows.Err(); err != nil {
		fail("query: " + err.Error())
	}
	return Arr(out)
}

func sqliteCell(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return Nil
	case int64:
		return Int(t)
	case float64:
		return Num(t)
	case bool:
		return Bool(t)
	case []byte:
		return Str(string(t))
	case string:
		return Str(t)
	}
	return Str(fmt.Sprint(x))
}

func sqliteExec(db *sql.DB, query string, params []Value) Value {
	res, err := db.Exec(query, driverArgs(params, "exec")...)
	if err != nil {
		fail("exec: " + err.Error())
	}
	n, err := res.RowsAffected()
	if err != nil {
		n = 0
	}
	return Int(n)
}

// handleMethod dispatches method calls on handle values by handle kind.
func (ip *Interpreter) handleMethod(h *Handle, name string, args []Value) Value {
	switch h.Kind {
	case "sqlite":
		db := h.Data.(*sql.DB)
		switch name {
		case "query":
			if len(args) < 1 {
				failUsage("query expects (sql, params...)")
			}
			return sqliteQuery(db, wantStr(args[0], "query sql"), args[1:])
		case "query_one":
			if len(args) < 1 {
				failUsage("query_one expects (sql, params...)")
			}
			rowsVal := sqliteQuery(db, wantStr(args[0], "query_one sql"), args[1:])
			rows := rowsVal.Data.(*ArrayObject).Elems
			if len(rows) == 0 {
				return Nil
			}
			return rows[0]
		case "exec":
			if len(args) < 1 {
				failUsage("exec expects (sql, params...)")
			}
			return sqliteExec(db, wantStr(args[0], "exec sql"), args[1:])
		case "close":
			wantArgs(args, 0, "close")
			if err := db.Close(); err != nil {
				fail("close: " + err.Error())
			}
			return Nil
		}
		failUsage(fmt.Sprintf("unknown method '%s' on sqlite handle", name))
	case "tcp", "listener":
		return netHandleMethod(h, name, args)
	}
	failUsage(fmt.Sprintf("unknown method '%s' on %s handle", name, h.Kind))
	return Nil
}
