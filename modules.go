// modules.go: script imports. Each module file runs once in its own
// scope; its top-level bindings are exported as a crystal map bound to
// the import alias.
package lattice

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

func (ip *Interpreter) execImport(env *Env, s ImportStmt) {
	alias := s.Alias
	if alias == "" {
		alias = sourceName(s.Path)
	}
	env.Define(ip, alias, ip.loadModule(s.Path), BindLet)
}

func (ip *Interpreter) loadModule(path string) Value {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(ip.scriptDir, path)
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		abs = full
	}

	if mod, ok := ip.modules[abs]; ok {
		return mod
	}
	if ip.loading[abs] {
		fail(fmt.Sprintf("import cycle detected at '%s'", path))
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		fail(fmt.Sprintf("import '%s': %s", path, err))
	}

	stmts, perr := Parse(string(src))
	if perr != nil {
		fail(fmt.Sprintf("import '%s': %s", path, perr))
	}

	ip.loading[abs] = true
	defer delete(ip.loading, abs)

	// Nested imports in the module resolve relative to its own directory.
	savedDir, savedName := ip.scriptDir, ip.srcName
	ip.scriptDir, ip.srcName = filepath.Dir(abs), path
	defer func() { ip.scriptDir, ip.srcName = savedDir, savedName }()

	modEnv := NewEnv(ip.globals)
	ip.execStmts(modEnv, stmts)

	mod := freezeValue(exportBindings(modEnv))
	ip.modules[abs] = mod
	ip.log.Debug("module loaded", zap.String("path", abs))
	return mod
}

// exportBindings snapshots a module scope's own bindings, skipping
// underscore-prefixed names.
func exportBindings(env *Env) Value {
	names := make([]string, 0, len(env.vars))
	for n := range env.vars {
		if len(n) > 0 && n[0] == '_' {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)

	mo := &MapObject{Entries: make(map[string]Value, len(names)), Phase: PhaseFluid}
	for _, n := range names {
		mo.Set(n, env.vars[n].Val)
	}
	return Value{Tag: VTMap, Data: mo}
}
