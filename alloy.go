// alloy.go: static per-field phase declarations on struct types.
//
// An alloy qualifier is resolved once at struct declaration and never
// changes: `fix` fields reject every post-construction assignment, `flux`
// fields accept assignment even through a frozen instance. The check is
// independent of the instance-level phase guard; both must pass.
package lattice

import "fmt"

// declareStruct registers a struct type and its alloy table. Redeclaring a
// name replaces the previous type.
func (ip *Interpreter) declareStruct(name string, fields []FieldDecl) {
	ip.structs[name] = &StructType{Name: name, Fields: fields}
}

func (ip *Interpreter) structType(name string) (*StructType, bool) {
	st, ok := ip.structs[name]
	return st, ok
}

func (st *StructType) fieldQual(field string) AlloyQual {
	for _, f := range st.Fields {
		if f.Name == field {
			return f.Qual
		}
	}
	return AlloyNone
}

// guardFieldAssign applies the alloy rule for an assignment to
// instance.field. With fix the assignment always fails; with flux it is
// exempt from the instance's own phase guard, which the caller must skip.
// Returns true when the phase guard still applies.
func (ip *Interpreter) guardFieldAssign(so *StructObject, field string) bool {
	st, ok := ip.structs[so.Name]
	if !ok {
		return true
	}
	switch st.fieldQual(field) {
	case AlloyFix:
		failState(fmt.Sprintf("cannot assign to fix field '%s' of struct %s", field, so.Name))
		return false
	case AlloyFlux:
		return false
	default:
		return true
	}
}
