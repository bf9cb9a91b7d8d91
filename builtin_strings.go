// builtin_strings.go: free-function string builtins complementing the
// receiver methods in methods.go.
package lattice

import "strings"

func registerStringBuiltins(ip *Interpreter) {
	ip.defineBuiltin("substr", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 3, "substr")
		r := []rune(wantStr(args[0], "substr source"))
		i := int(wantInt(args[1], "substr start"))
		j := int(wantInt(args[2], "substr end"))
		if i < 0 {
			i = 0
		}
		if j < i {
			j = i
		}
		if i > len(r) {
			i = len(r)
		}
		if j > len(r) {
			j = len(r)
		}
		return Str(string(r[i:j]))
	})

	ip.defineBuiltin("lstrip", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "lstrip")
		return Str(strings.TrimLeft(wantStr(args[0], "lstrip argument"), " \t\r\n"))
	})

	ip.defineBuiltin("rstrip", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "rstrip")
		return Str(strings.TrimRight(wantStr(args[0], "rstrip argument"), " \t\r\n"))
	})

	ip.defineBuiltin("pad_left", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 3, "pad_left")
		s := wantStr(args[0], "pad_left source")
		width := int(wantInt(args[1], "pad_left width"))
		pad := wantStr(args[2], "pad_left padding")
		if pad == "" {
			pad = " "
		}
		for len(s) < width {
			s = pad + s
		}
		return Str(s)
	})

	ip.defineBuiltin("pad_right", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 3, "pad_right")
		s := wantStr(args[0], "pad_right source")
		width := int(wantInt(args[1], "pad_right width"))
		pad := wantStr(args[2], "pad_right padding")
		if pad == "" {
			pad = " "
		}
		for len(s) < width {
			s = s + pad
		}
		return Str(s)
	})
}
