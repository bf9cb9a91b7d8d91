// builtin_file.go: filesystem builtins.
package lattice

import (
	"os"
	"path/filepath"
	"sort"
)

func registerFileBuiltins(ip *Interpreter) {
	ip.defineBuiltin("read_file", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "read_file")
		b, err := os.ReadFile(wantStr(args[0], "read_file path"))
		if err != nil {
			fail("read_file: " + err.Error())
		}
		return Str(string(b))
	})

	ip.defineBuiltin("write_file", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 2, "write_file")
		path := wantStr(args[0], "write_file path")
		data := wantStr(args[1], "write_file data")
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			fail("write_file: " + err.Error())
		}
		return Nil
	})

	ip.defineBuiltin("append_file", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 2, "append_file")
		path := wantStr(args[0], "append_file path")
		data := wantStr(args[1], "append_file data")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fail("append_file: " + err.Error())
		}
		defer f.Close()
		if _, err := f.WriteString(data); err != nil {
			fail("append_file: " + err.Error())
		}
		return Nil
	})

	ip.defineBuiltin("file_exists", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "file_exists")
		_, err := os.Stat(wantStr(args[0], "file_exists path"))
		return Bool(err == nil)
	})

	ip.defineBuiltin("delete_file", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "delete_file")
		if err := os.Remove(wantStr(args[0], "delete_file path")); err != nil {
			fail("delete_file: " + err.Error())
		}
		return Nil
	})

	ip.defineBuiltin("list_dir", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "list_dir")
		entries, err := os.ReadDir(wantStr(args[0], "list_dir path"))
		if err != nil {
			fail("list_dir: " + err.Error())
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		sort.Strings(names)
		out := make([]Value, len(names))
		for i, n := range names {
			out[i] = Str(n)
		}
		return Arr(out)
	})

	ip.defineBuiltin("mkdir", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "mkdir")
		if err := os.MkdirAll(wantStr(args[0], "mkdir path"), 0o755); err != nil {
			fail("mkdir: " + err.Error())
		}
		return Nil
	})

	ip.defineBuiltin("path_join", func(_ *Interpreter, args []Value) Value {
		if len(args) == 0 {
			failUsage("path_join expects at least 1 argument")
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = wantStr(a, "path_join segment")
		}
		return Str(filepath.Join(parts...))
	})

	ip.defineBuiltin("getenv", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "getenv")
		v, ok := os.LookupEnv(wantStr(args[0], "getenv name"))
		if !ok {
			return Nil
		}
		return Str(v)
	})
}
