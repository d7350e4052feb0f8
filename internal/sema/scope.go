package sema

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
)

// scope is one lexical level of the variable-lifetime pass (spec.md
// §4.3): module, function, or comprehension. free records names this
// scope read but did not declare itself — the raw material the
// closure-detection subpass consults once a function's body has been
// fully walked.
type scope struct {
	parent    *scope
	funcDef   *ast.FunctionDef // nil for module/comprehension scopes
	vars      map[string]*types.Type
	free      map[string]bool
	localDefs map[string]*ast.FunctionDef
}

func newScope(parent *scope, fn *ast.FunctionDef) *scope {
	return &scope{
		parent:    parent,
		funcDef:   fn,
		vars:      map[string]*types.Type{},
		free:      map[string]bool{},
		localDefs: map[string]*ast.FunctionDef{},
	}
}

// declare binds name in this scope, widening against any prior
// binding of the same name (a variable reassigned with a different
// type still needs a single NativeType covering every assignment).
func (s *scope) declare(name string, t *types.Type) {
	if existing, ok := s.vars[name]; ok {
		s.vars[name] = types.Widen(existing, t)
		return
	}
	s.vars[name] = t
}

// lookup searches outward through enclosing scopes. Every function-
// scope boundary crossed to find name is recorded in that scope's
// free set, which is how VisitFunctionDef later decides whether the
// function it just finished walking is a closure.
func (s *scope) lookup(name string) (*types.Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			for walker := s; walker != cur; walker = walker.parent {
				if walker.funcDef != nil {
					walker.free[name] = true
				}
			}
			return t, true
		}
	}
	return nil, false
}

func (s *scope) lookupLocalDef(name string) (*ast.FunctionDef, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if fn, ok := cur.localDefs[name]; ok {
			return fn, true
		}
	}
	return nil, false
}
