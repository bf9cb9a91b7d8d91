// ast.go: typed syntax tree produced by the parser.
//
// Nodes carry their source position for runtime error carets. The tree is
// immutable after parsing; the evaluator never mutates it.
package lattice

// PhaseQual is a phase qualifier on a function parameter or match pattern.
type PhaseQual int

const (
	QualNone    PhaseQual = iota // matches any phase
	QualFluid                    // ~x / flux x, fluid arguments only
	QualCrystal                  // *x / fix x, crystal arguments only
)

func (q PhaseQual) String() string {
	switch q {
	case QualFluid:
		return "fluid"
	case QualCrystal:
		return "crystal"
	default:
		return "any"
	}
}

// AlloyQual is a struct-field phase declaration.
type AlloyQual int

const (
	AlloyNone AlloyQual = iota // no declaration, instance phase rules apply
	AlloyFlux                  // always assignable regardless of instance phase
	AlloyFix                   // never assignable after construction
)

type Pos struct {
	Line int
	Col  int
}

// Expr is any expression node.
type Expr interface{ exprNode() }

// Stmt is any statement node.
type Stmt interface{ stmtNode() }

// --- expressions ------------------------------------------------------------

type (
	IntLit struct {
		Pos
		V int64
	}
	FloatLit struct {
		Pos
		V float64
	}
	StrLit struct {
		Pos
		V string
	}
	BoolLit struct {
		Pos
		V bool
	}
	NilLit struct{ Pos }

	// InterpStr is "a${x}b": len(Parts) == len(Exprs)+1.
	InterpStr struct {
		Pos
		Parts []string
		Exprs []Expr
	}

	Ident struct {
		Pos
		Name string
	}

	Binary struct {
		Pos
		Op   TokenType
		L, R Expr
	}

	Unary struct {
		Pos
		Op TokenType
		X  Expr
	}

	Call struct {
		Pos
		Callee Expr
		Args   []Expr
	}

	// MethodCall is receiver-style sugar: xs.push(v), m.remove(k).
	MethodCall struct {
		Pos
		Recv Expr
		Name string
		Args []Expr
	}

	// StaticCall is Type::name(args), e.g. Map::new(), Chan::new().
	StaticCall struct {
		Pos
		Type string
		Name string
		Args []Expr
	}

	FieldAccess struct {
		Pos
		X    Expr
		Name string
	}

	Index struct {
		Pos
		X   Expr
		Idx Expr
	}

	ArrayLit struct {
		Pos
		Elems []Expr
	}

	TupleLit struct {
		Pos
		Elems []Expr
	}

	StructLit struct {
		Pos
		Name        string
		FieldNames  []string
		FieldValues []Expr
	}

	Param struct {
		Name string
		Qual PhaseQual
	}

	ClosureLit struct {
		Pos
		Params []Param
		Body   []Stmt // nil when ExprBody is set
		Expr   Expr   // single-expression body: |v| v > 0
	}

	IfExpr struct {
		Pos
		Cond Expr
		Then []Stmt
		Else []Stmt // nil, or a single ExprStmt{IfExpr} for else-if chains
	}

	MatchExpr struct {
		Pos
		Scrutinee Expr
		Arms      []MatchArm
	}

	FreezeExpr struct {
		Pos
		Target Expr
		Where  Expr   // optional contract closure
		Except []Expr // optional defect keys
	}

	ThawExpr struct {
		Pos
		X Expr
	}

	SublimateExpr struct {
		Pos
		X Expr
	}

	CloneExpr struct {
		Pos
		X Expr
	}

	AnnealExpr struct {
		Pos
		Target    Expr
		Transform Expr // closure
	}

	CrystallizeExpr struct {
		Pos
		Target Expr
		Body   []Stmt
	}

	SpawnExpr struct {
		Pos
		Body []Stmt
	}

	ScopeExpr struct {
		Pos
		Body []Stmt
	}

	PrintExpr struct {
		Pos
		Args []Expr
	}
)

// MatchArm pairs a pattern with its result expression.
type MatchArm struct {
	Pat  Pattern
	Body Expr
}

// PatternKind discriminates match patterns.
type PatternKind int

const (
	PatLiteral PatternKind = iota
	PatBind                // lowercase identifier: binds the scrutinee
	PatWildcard
	PatArray
)

// Pattern is a match pattern, optionally phase-qualified (`fluid <pat>`,
// `crystal <pat>`). Qualifiers test the scrutinee's phase before the inner
// pattern is tried.
type Pattern struct {
	Kind  PatternKind
	Qual  PhaseQual
	Lit   Expr      // PatLiteral
	Name  string    // PatBind
	Elems []Pattern // PatArray
}

func (IntLit) exprNode()          {}
func (FloatLit) exprNode()        {}
func (StrLit) exprNode()          {}
func (BoolLit) exprNode()         {}
func (NilLit) exprNode()          {}
func (InterpStr) exprNode()       {}
func (Ident) exprNode()           {}
func (Binary) exprNode()          {}
func (Unary) exprNode()           {}
func (Call) exprNode()            {}
func (MethodCall) exprNode()      {}
func (StaticCall) exprNode()      {}
func (FieldAccess) exprNode()     {}
func (Index) exprNode()           {}
func (ArrayLit) exprNode()        {}
func (TupleLit) exprNode()        {}
func (StructLit) exprNode()       {}
func (ClosureLit) exprNode()      {}
func (IfExpr) exprNode()          {}
func (MatchExpr) exprNode()       {}
func (FreezeExpr) exprNode()      {}
func (ThawExpr) exprNode()        {}
func (SublimateExpr) exprNode()   {}
func (CloneExpr) exprNode()       {}
func (AnnealExpr) exprNode()      {}
func (CrystallizeExpr) exprNode() {}
func (SpawnExpr) exprNode()       {}
func (ScopeExpr) exprNode()       {}
func (PrintExpr) exprNode()       {}

// --- statements -------------------------------------------------------------

// BindKind distinguishes flux/fix/let bindings.
type BindKind int

const (
	BindFlux BindKind = iota
	BindFix
	BindLet
)

type (
	BindStmt struct {
		Pos
		Kind BindKind
		Name string
		Init Expr
	}

	// AssignStmt covers x = e, x.f = e, x[i] = e and the compound forms.
	AssignStmt struct {
		Pos
		Target Expr
		Op     TokenType // tAssign or tPlusEq..tPercentEq
		Value  Expr
	}

	ExprStmt struct {
		Pos
		E Expr
	}

	ReturnStmt struct {
		Pos
		E Expr // nil for bare return
	}

	BreakStmt    struct{ Pos }
	ContinueStmt struct{ Pos }

	WhileStmt struct {
		Pos
		Cond Expr
		Body []Stmt
	}

	LoopStmt struct {
		Pos
		Body []Stmt
	}

	ForStmt struct {
		Pos
		Var  string
		Iter Expr
		Body []Stmt
	}

	// FnDecl is a named top-level function; phase-qualified parameters make
	// it part of an overload set.
	FnDecl struct {
		Pos
		Name   string
		Params []Param
		Body   []Stmt
	}

	FieldDecl struct {
		Name string
		Qual AlloyQual
		Type string // declared type name, informational
	}

	StructDecl struct {
		Pos
		Name   string
		Fields []FieldDecl
	}

	TryStmt struct {
		Pos
		Body    []Stmt
		ErrName string
		Catch   []Stmt
	}

	ImportStmt struct {
		Pos
		Path  string
		Alias string
	}
)

func (BindStmt) stmtNode()     {}
func (AssignStmt) stmtNode()   {}
func (ExprStmt) stmtNode()     {}
func (ReturnStmt) stmtNode()   {}
func (BreakStmt) stmtNode()    {}
func (ContinueStmt) stmtNode() {}
func (WhileStmt) stmtNode()    {}
func (LoopStmt) stmtNode()     {}
func (ForStmt) stmtNode()      {}
func (FnDecl) stmtNode()       {}
func (StructDecl) stmtNode()   {}
func (TryStmt) stmtNode()      {}
func (ImportStmt) stmtNode()   {}
