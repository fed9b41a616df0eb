package module

import "github.com/golangsnmp/mibc/internal/types"

// Kind is the closed set of declaration forms the grammar produces.
type Kind int

const (
	KindObjectType Kind = iota + 1
	KindTypeDecl
	KindSequence
	KindModuleIdentity
	KindObjectIdentity
	KindValue
	KindNotification
	KindObjectGroup
	KindNotificationGroup
	KindCompliance
	KindCapabilities
	KindMacro
)

var kindNames = map[Kind]string{
	KindObjectType:        "object-type",
	KindTypeDecl:          "type",
	KindSequence:          "sequence",
	KindModuleIdentity:    "module-identity",
	KindObjectIdentity:    "object-identity",
	KindValue:             "value",
	KindNotification:      "notification",
	KindObjectGroup:       "object-group",
	KindNotificationGroup: "notification-group",
	KindCompliance:        "compliance",
	KindCapabilities:      "capabilities",
	KindMacro:             "macro",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// HasOid reports whether declarations of this kind are OID nodes.
func (k Kind) HasOid() bool {
	switch k {
	case KindTypeDecl, KindSequence, KindMacro:
		return false
	}
	return true
}

// Declaration is one top-level declaration. The concrete types below
// are the only implementations; dispatch with a type switch.
type Declaration interface {
	DeclName() string
	Kind() Kind
	// DeclOid returns the OID value, or nil for kinds without one.
	DeclOid() *OidValue
	DeclSpan() types.Span
}

// ObjectType is an OBJECT-TYPE.
type ObjectType struct {
	Name        string
	Syntax      Syntax
	Units       string
	Access      types.Access
	Status      types.Status
	Description string
	Reference   string
	Index       []IndexItem
	Augments    string
	DefVal      *DefVal
	Oid         OidValue
	Span        types.Span
}

// IndexItem is one INDEX entry. SMIv1 modules may name a primitive
// type instead of a column.
type IndexItem struct {
	Implied bool
	Object  string
}

// TypeDecl is a type assignment or TEXTUAL-CONVENTION.
type TypeDecl struct {
	Name              string
	Syntax            Syntax
	TextualConvention bool
	DisplayHint       string
	Status            types.Status
	Description       string
	Reference         string
	Span              types.Span
}

// Sequence is a SEQUENCE { ... } type naming the columns of a row.
type Sequence struct {
	Name   string
	Fields []Field
	Span   types.Span
}

// Field is one column entry of a Sequence.
type Field struct {
	Name   string
	Syntax Syntax
}

// ModuleIdentity is a MODULE-IDENTITY.
type ModuleIdentity struct {
	Name         string
	LastUpdated  string
	Organization string
	ContactInfo  string
	Description  string
	Revisions    []Revision
	Oid          OidValue
	Span         types.Span
}

// Revision is a REVISION clause.
type Revision struct {
	Date        string
	Description string
}

// ObjectIdentity is an OBJECT-IDENTITY.
type ObjectIdentity struct {
	Name        string
	Status      types.Status
	Description string
	Reference   string
	Oid         OidValue
	Span        types.Span
}

// Value is a plain "name OBJECT IDENTIFIER ::= { ... }" assignment.
type Value struct {
	Name string
	Oid  OidValue
	Span types.Span
}

// Notification is a NOTIFICATION-TYPE or an SMIv1 TRAP-TYPE.
type Notification struct {
	Name        string
	Objects     []string
	Status      types.Status
	Description string
	Reference   string
	Oid         OidValue
	Trap        *Trap
	Span        types.Span
}

// Trap holds the TRAP-TYPE specific clauses. The notification OID of
// a trap is { Enterprise 0 Number }.
type Trap struct {
	Enterprise string
	Number     uint32
}

// ObjectGroup is an OBJECT-GROUP.
type ObjectGroup struct {
	Name        string
	Objects     []string
	Status      types.Status
	Description string
	Reference   string
	Oid         OidValue
	Span        types.Span
}

// NotificationGroup is a NOTIFICATION-GROUP.
type NotificationGroup struct {
	Name          string
	Notifications []string
	Status        types.Status
	Description   string
	Reference     string
	Oid           OidValue
	Span          types.Span
}

// Compliance is a MODULE-COMPLIANCE.
type Compliance struct {
	Name        string
	Status      types.Status
	Description string
	Reference   string
	Modules     []ComplianceModule
	Oid         OidValue
	Span        types.Span
}

// ComplianceModule is a MODULE clause. Module is empty for the
// current module.
type ComplianceModule struct {
	Module          string
	MandatoryGroups []string
	Groups          []string
	Objects         []string
}

// Capabilities is an AGENT-CAPABILITIES.
type Capabilities struct {
	Name           string
	ProductRelease string
	Status         types.Status
	Description    string
	Reference      string
	Supports       []Supports
	Oid            OidValue
	Span           types.Span
}

// Supports is a SUPPORTS clause; Variations lists the varied objects.
type Supports struct {
	Module     string
	Includes   []string
	Variations []string
}

// Macro is a MACRO definition; only its name is kept.
type Macro struct {
	Name string
	Span types.Span
}

func (d *ObjectType) DeclName() string     { return d.Name }
func (d *ObjectType) Kind() Kind           { return KindObjectType }
func (d *ObjectType) DeclOid() *OidValue   { return &d.Oid }
func (d *ObjectType) DeclSpan() types.Span { return d.Span }

func (d *TypeDecl) DeclName() string     { return d.Name }
func (d *TypeDecl) Kind() Kind           { return KindTypeDecl }
func (d *TypeDecl) DeclOid() *OidValue   { return nil }
func (d *TypeDecl) DeclSpan() types.Span { return d.Span }

func (d *Sequence) DeclName() string     { return d.Name }
func (d *Sequence) Kind() Kind           { return KindSequence }
func (d *Sequence) DeclOid() *OidValue   { return nil }
func (d *Sequence) DeclSpan() types.Span { return d.Span }

func (d *ModuleIdentity) DeclName() string     { return d.Name }
func (d *ModuleIdentity) Kind() Kind           { return KindModuleIdentity }
func (d *ModuleIdentity) DeclOid() *OidValue   { return &d.Oid }
func (d *ModuleIdentity) DeclSpan() types.Span { return d.Span }

func (d *ObjectIdentity) DeclName() string     { return d.Name }
func (d *ObjectIdentity) Kind() Kind           { return KindObjectIdentity }
func (d *ObjectIdentity) DeclOid() *OidValue   { return &d.Oid }
func (d *ObjectIdentity) DeclSpan() types.Span { return d.Span }

func (d *Value) DeclName() string     { return d.Name }
func (d *Value) Kind() Kind           { return KindValue }
func (d *Value) DeclOid() *OidValue   { return &d.Oid }
func (d *Value) DeclSpan() types.Span { return d.Span }

func (d *Notification) DeclName() string     { return d.Name }
func (d *Notification) Kind() Kind           { return KindNotification }
func (d *Notification) DeclOid() *OidValue   { return &d.Oid }
func (d *Notification) DeclSpan() types.Span { return d.Span }

func (d *ObjectGroup) DeclName() string     { return d.Name }
func (d *ObjectGroup) Kind() Kind           { return KindObjectGroup }
func (d *ObjectGroup) DeclOid() *OidValue   { return &d.Oid }
func (d *ObjectGroup) DeclSpan() types.Span { return d.Span }

func (d *NotificationGroup) DeclName() string     { return d.Name }
func (d *NotificationGroup) Kind() Kind           { return KindNotificationGroup }
func (d *NotificationGroup) DeclOid() *OidValue   { return &d.Oid }
func (d *NotificationGroup) DeclSpan() types.Span { return d.Span }

func (d *Compliance) DeclName() string     { return d.Name }
func (d *Compliance) Kind() Kind           { return KindCompliance }
func (d *Compliance) DeclOid() *OidValue   { return &d.Oid }
func (d *Compliance) DeclSpan() types.Span { return d.Span }

func (d *Capabilities) DeclName() string     { return d.Name }
func (d *Capabilities) Kind() Kind           { return KindCapabilities }
func (d *Capabilities) DeclOid() *OidValue   { return &d.Oid }
func (d *Capabilities) DeclSpan() types.Span { return d.Span }

func (d *Macro) DeclName() string     { return d.Name }
func (d *Macro) Kind() Kind           { return KindMacro }
func (d *Macro) DeclOid() *OidValue   { return nil }
func (d *Macro) DeclSpan() types.Span { return d.Span }
