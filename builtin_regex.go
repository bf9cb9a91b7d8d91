// builtin_regex.go: regular expression builtins backed by RE2.
package lattice

import "regexp"

func compilePattern(pat string, what string) *regexp.Regexp {
	re, err := regexp.Compile(pat)
	if err != nil {
		fail(what + ": invalid pattern: " + err.Error())
	}
	return re
}

func registerRegexBuiltins(ip *Interpreter) {
	ip.defineBuiltin("regex_match", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 2, "regex_match")
		re := compilePattern(wantStr(args[0], "regex_match pattern"), "regex_match")
		return Bool(re.MatchString(wantStr(args[1], "regex_match input")))
	})

	// First match with capture groups; nil when there is no match.
	ip.defineBuiltin("regex_find", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 2, "regex_find")
		re := compilePattern(wantStr(args[0], "regex_find pattern"), "regex_find")
		m := re.FindStringSubmatch(wantStr(args[1], "regex_find input"))
		if m == nil {
			return Nil
		}
		out := make([]Value, len(m))
		for i, g := range m {
			out[i] = Str(g)
		}
		return Arr(out)
	})

	ip.defineBuiltin("regex_find_all", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 2, "regex_find_all")
		re := compilePattern(wantStr(args[0], "regex_find_all pattern"), "regex_find_all")
		ms := re.FindAllString(wantStr(args[1], "regex_find_all input"), -1)
		out := make([]Value, len(ms))
		for i, m := range ms {
			out[i] = Str(m)
		}
		return Arr(out)
	})

	ip.defineBuiltin("regex_replace", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 3, "regex_replace")
		re := compilePattern(wantStr(args[0], "regex_replace pattern"), "regex_replace")
		in := wantStr(args[1], "regex_replace input")
		rep := wantStr(args[2], "regex_replace replacement")
		return Str(re.ReplaceAllString(in, rep))
	})

	ip.defineBuiltin("regex_split", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 2, "regex_split")
		re := compilePattern(wantStr(args[0], "regex_split pattern"), "regex_split")
		parts := re.Split(wantStr(args[1], "regex_split input"), -1)
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = Str(p)
		}
		return Arr(out)
	})
}
