// builtin_core.go: general-purpose builtins: conversion, inspection,
// assertions.
package lattice

import (
	"fmt"
	"strconv"
)

// Version is the interpreter release string reported by version().
const Version = "0.4.0"

// typeOfName is the capitalized type name type_of reports. Error messages
// keep the lowercase nouns from TypeName.
func typeOfName(v Value) string {
	switch v.Tag {
	case VTNil:
		return "Nil"
	case VTBool:
		return "Bool"
	case VTInt:
		return "Int"
	case VTNum:
		return "Float"
	case VTStr:
		return "String"
	case VTRange:
		return "Range"
	case VTArray:
		return "Array"
	case VTMap:
		return "Map"
	case VTStruct:
		return "Struct"
	case VTTuple:
		return "Tuple"
	case VTFun:
		return "Closure"
	case VTChan:
		return "Channel"
	case VTHandle:
		return "Handle"
	default:
		return "?"
	}
}

func registerCoreBuiltins(ip *Interpreter) {
	ip.defineBuiltin("len", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "len")
		switch v := args[0]; v.Tag {
		case VTStr:
			return Int(int64(len(v.Data.(string))))
		case VTArray:
			return Int(int64(len(v.Data.(*ArrayObject).Elems)))
		case VTMap:
			return Int(int64(len(v.Data.(*MapObject).Keys)))
		case VTTuple:
			return Int(int64(len(v.Data.(*TupleObject).Elems)))
		case VTRange:
			r := v.Data.(*RangeObject)
			if r.End < r.Start {
				return Int(0)
			}
			return Int(r.End - r.Start)
		}
		return Int(0)
	})

	ip.defineBuiltin("type_of", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "type_of")
		return Str(typeOfName(args[0]))
	})

	ip.defineBuiltin("to_string", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "to_string")
		return Str(Display(args[0]))
	})

	ip.defineBuiltin("parse_int", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "parse_int")
		if args[0].Tag != VTStr {
			return Nil
		}
		n, err := strconv.ParseInt(args[0].Data.(string), 10, 64)
		if err != nil {
			return Nil
		}
		return Int(n)
	})

	ip.defineBuiltin("parse_float", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "parse_float")
		if args[0].Tag != VTStr {
			return Nil
		}
		f, err := strconv.ParseFloat(args[0].Data.(string), 64)
		if err != nil {
			return Nil
		}
		return Num(f)
	})

	ip.defineBuiltin("ord", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "ord")
		s := wantStr(args[0], "ord argument")
		if s == "" {
			return Int(-1)
		}
		return Int(int64([]rune(s)[0]))
	})

	ip.defineBuiltin("chr", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "chr")
		return Str(string(rune(wantInt(args[0], "chr argument"))))
	})

	ip.defineBuiltin("assert", func(_ *Interpreter, args []Value) Value {
		if len(args) < 1 {
			failUsage("assert expects at least 1 argument")
		}
		if !Truthy(args[0]) {
			msg := "assertion failed"
			if len(args) >= 2 && args[1].Tag == VTStr {
				msg = "assertion failed: " + args[1].Data.(string)
			}
			fail(msg)
		}
		return Nil
	})

	ip.defineBuiltin("raise", func(_ *Interpreter, args []Value) Value {
		msg := "error"
		if len(args) >= 1 {
			msg = Display(args[0])
		}
		fail(msg)
		return Nil
	})

	ip.defineBuiltin("version", func(_ *Interpreter, args []Value) Value {
		return Str(Version)
	})

	ip.defineBuiltin("format", func(_ *Interpreter, args []Value) Value {
		if len(args) < 1 {
			failUsage("format expects at least 1 argument")
		}
		tmpl := wantStr(args[0], "format template")
		rest := make([]interface{}, len(args)-1)
		for i, a := range args[1:] {
			rest[i] = Display(a)
		}
		return Str(fmt.Sprintf(tmpl, rest...))
	})
}
