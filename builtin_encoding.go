// builtin_encoding.go: TOML and YAML serialization.
package lattice

import (
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

func registerEncodingBuiltins(ip *Interpreter) {
	ip.defineBuiltin("toml_encode", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "toml_encode")
		b, err := toml.Marshal(valueToGo(args[0]))
		if err != nil {
			fail("toml_encode: " + err.Error())
		}
		return Str(string(b))
	})

	ip.defineBuiltin("toml_decode", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "toml_decode")
		var out map[string]interface{}
		if err := toml.Unmarshal([]byte(wantStr(args[0], "toml_decode input")), &out); err != nil {
			fail("toml_decode: " + err.Error())
		}
		return goToValue(out)
	})

	ip.defineBuiltin("yaml_encode", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "yaml_encode")
		b, err := yaml.Marshal(valueToGo(args[0]))
		if err != nil {
			fail("yaml_encode: " + err.Error())
		}
		return Str(string(b))
	})

	ip.defineBuiltin("yaml_decode", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "yaml_decode")
		var out interface{}
		if err := yaml.Unmarshal([]byte(wantStr(args[0], "yaml_decode input")), &out); err != nil {
			fail("yaml_decode: " + err.Error())
		}
		return goToValue(out)
	})
}
