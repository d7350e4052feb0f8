package emit

import (
	"fmt"
	"strings"

	"github.com/vexlang/vexc/internal/ast"
)

// emitClassDef lowers a class definition to a Go struct (fields in
// first-assigned order, per types.ClassInfo.Fields) plus one Go method
// per class method other than __init__, whose body instantiation
// already inlines at each call site (spec.md §4.4's "Class
// instantiation" recipe).
func (e *Emitter) emitClassDef(n *ast.ClassDef) {
	ci, ok := e.res.Classes.Get(n.Name)
	if !ok {
		ci = e.res.Classes.GetOrCreate(n.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "type %s struct {\n", n.Name)
	for _, field := range ci.Fields {
		fmt.Fprintf(&b, "\t%s %s\n", renameIdent(field), goType(ci.FieldType(field)))
	}
	b.WriteString("}\n")
	e.classDecls = append(e.classDecls, b.String())

	for _, stmt := range n.Body {
		fn, ok := stmt.(*ast.FunctionDef)
		if !ok {
			continue
		}
		if fn.Name == "__init__" {
			e.classInits[n.Name] = fn
			continue
		}
		e.classDecls = append(e.classDecls, e.emitClassMethod(n.Name, fn))
	}
}

func (e *Emitter) emitClassMethod(className string, fn *ast.FunctionDef) string {
	recv := "self"
	params := make([]string, 0, len(fn.Args)-1)
	for _, arg := range fn.Args[1:] {
		params = append(params, fmt.Sprintf("%s %s", renameIdent(arg.Name), goType(resolveArgType(arg))))
	}
	ret := ""
	if fn.Returns != "" {
		ret = " " + goType(resolveReturnType(fn.Returns))
	}
	body, _ := e.withBuffer(func() error {
		e.pushScope()
		e.scope.declared[recv] = true
		for _, arg := range fn.Args[1:] {
			e.scope.declared[renameIdent(arg.Name)] = true
		}
		for _, s := range fn.Body {
			if err := s.Accept(e); err != nil {
				return err
			}
		}
		e.popScope()
		return nil
	})
	var b strings.Builder
	fmt.Fprintf(&b, "func (%s *%s) %s(%s)%s {\n", recv, className, renameIdent(fn.Name), strings.Join(params, ", "), ret)
	b.WriteString(body)
	b.WriteString("}\n")
	return b.String()
}
