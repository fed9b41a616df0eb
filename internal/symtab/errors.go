package symtab

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSemantic is the category of all symbol table and resolution
// errors. Match it with errors.Is.
var ErrSemantic = errors.New("semantic error")

// DuplicateSymbolError reports a name declared twice in one module.
type DuplicateSymbolError struct {
	Module string
	Name   string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("%s: duplicate symbol %s", e.Module, e.Name)
}

func (e *DuplicateSymbolError) Is(target error) bool { return target == ErrSemantic }

// Unresolved is a symbol whose parents never became available.
type Unresolved struct {
	Name    string
	Missing []string
}

// UnresolvedParentsError lists every symbol left pending after the
// fixed point and the leniency pass.
type UnresolvedParentsError struct {
	Module  string
	Symbols []Unresolved
	// Cycles lists groups of symbols that wait on each other.
	Cycles [][]string
}

func (e *UnresolvedParentsError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: unresolved parents:", e.Module)
	for i, u := range e.Symbols {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, " %s (missing %s)", u.Name, strings.Join(u.Missing, ", "))
	}
	for _, c := range e.Cycles {
		fmt.Fprintf(&b, "; cycle among %s", strings.Join(c, ", "))
	}
	return b.String()
}

func (e *UnresolvedParentsError) Is(target error) bool { return target == ErrSemantic }

// UnknownModuleError reports a reference to a module that has no table.
type UnknownModuleError struct {
	Module string
	// From is the module holding the reference.
	From string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("%s: unknown module %s", e.From, e.Module)
}

func (e *UnknownModuleError) Is(target error) bool { return target == ErrSemantic }

// UnknownSymbolError reports a name not defined where it was looked up.
type UnknownSymbolError struct {
	Module string
	Name   string
	From   string
}

func (e *UnknownSymbolError) Error() string {
	if e.Module == "" {
		return fmt.Sprintf("%s: unknown symbol %s", e.From, e.Name)
	}
	return fmt.Sprintf("%s: symbol %s not defined in %s", e.From, e.Name, e.Module)
}

func (e *UnknownSymbolError) Is(target error) bool { return target == ErrSemantic }
