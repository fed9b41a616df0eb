package resolver

import (
	"fmt"
	"strings"

	"github.com/golangsnmp/mibc/internal/symtab"
)

// CycleError reports a definition that depends on itself, through OID
// values or type references.
type CycleError struct {
	Path []symtab.Ref
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, ref := range e.Path {
		parts[i] = ref.String()
	}
	return "definition cycle: " + strings.Join(parts, " -> ")
}

func (e *CycleError) Is(target error) bool { return target == symtab.ErrSemantic }

// DuplicateModuleIdentityError reports more than one MODULE-IDENTITY in
// a module.
type DuplicateModuleIdentityError struct {
	Module string
	Names  []string
}

func (e *DuplicateModuleIdentityError) Error() string {
	return fmt.Sprintf("%s: multiple MODULE-IDENTITY definitions: %s", e.Module, strings.Join(e.Names, ", "))
}

func (e *DuplicateModuleIdentityError) Is(target error) bool { return target == symtab.ErrSemantic }

// DuplicateOidError reports two symbols assigned the same OID.
type DuplicateOidError struct {
	Oid    Oid
	First  symtab.Ref
	Second symtab.Ref
}

func (e *DuplicateOidError) Error() string {
	return fmt.Sprintf("OID %s assigned to both %s and %s", e.Oid, e.First, e.Second)
}

func (e *DuplicateOidError) Is(target error) bool { return target == symtab.ErrSemantic }

// RevisionDateError reports a LAST-UPDATED or REVISION value that is
// not a valid SMI date.
type RevisionDateError struct {
	Module string
	Value  string
}

func (e *RevisionDateError) Error() string {
	return fmt.Sprintf("%s: malformed revision date %q", e.Module, e.Value)
}

func (e *RevisionDateError) Is(target error) bool { return target == symtab.ErrSemantic }
