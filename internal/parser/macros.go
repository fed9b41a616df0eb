package parser

import (
	"strconv"

	"github.com/golangsnmp/mibc/internal/lexer"
	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/types"
)

func (p *Parser) parseObjectType() module.Declaration {
	name := p.advance()
	p.advance() // OBJECT-TYPE
	obj := &module.ObjectType{Name: name.Text}

	for !p.check(lexer.TokAssign) {
		if handled, ok := p.textClause(&obj.Description, &obj.Reference); handled {
			if !ok {
				return nil
			}
			continue
		}
		ok := true
		switch tok := p.peek(); {
		case tok.Is("SYNTAX"):
			p.advance()
			obj.Syntax, ok = p.parseSyntax()
		case tok.Is("UNITS"):
			p.advance()
			obj.Units, ok = p.expectString()
		case tok.Is("ACCESS"), tok.Is("MAX-ACCESS"):
			obj.Access, ok = p.parseAccess()
		case tok.Is("STATUS"):
			obj.Status, ok = p.parseStatus()
		case tok.Is("INDEX"):
			p.advance()
			obj.Index, ok = p.parseIndex()
		case tok.Is("AUGMENTS"):
			p.advance()
			var names []string
			names, ok = p.parseNameList()
			if ok && len(names) == 1 {
				obj.Augments = names[0]
			} else if ok {
				p.errorf(tok.Span, "AUGMENTS of %s must name exactly one row", name.Text)
			}
		case tok.Is("DEFVAL"):
			p.advance()
			obj.DefVal, ok = p.parseDefVal()
		default:
			p.unexpectedClause("OBJECT-TYPE")
			return nil
		}
		if !ok {
			return nil
		}
	}
	if obj.Syntax.IsZero() {
		p.errorf(name.Span, "OBJECT-TYPE %s has no SYNTAX", name.Text)
		return nil
	}
	oid, ok := p.parseAssignedOid()
	if !ok {
		return nil
	}
	obj.Oid = oid
	obj.Span = p.spanFrom(name)
	return obj
}

// parseIndex reads "{ [IMPLIED] item, ... }". SMIv1 items may be type
// names such as INTEGER or OCTET STRING.
func (p *Parser) parseIndex() ([]module.IndexItem, bool) {
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return nil, false
	}
	var items []module.IndexItem
	for !p.check(lexer.TokRBrace) {
		item := module.IndexItem{Implied: p.acceptKeyword("IMPLIED")}
		switch tok := p.peek(); {
		case tok.Text == "OCTET" && p.peekNth(1).Text == "STRING":
			p.advance()
			p.advance()
			item.Object = "OCTET STRING"
		case tok.Is("OBJECT") && p.peekNth(1).Is("IDENTIFIER"):
			p.advance()
			p.advance()
			item.Object = "OBJECT IDENTIFIER"
		default:
			id, ok := p.expectIdent()
			if !ok {
				return items, false
			}
			item.Object = id.Text
		}
		items = append(items, item)
		if !p.accept(lexer.TokComma) {
			break
		}
	}
	_, ok := p.expect(lexer.TokRBrace)
	return items, ok
}

func (p *Parser) parseModuleIdentity() module.Declaration {
	name := p.advance()
	p.advance()
	mi := &module.ModuleIdentity{Name: name.Text}
	for !p.check(lexer.TokAssign) {
		ok := true
		switch tok := p.peek(); {
		case tok.Is("LAST-UPDATED"):
			p.advance()
			mi.LastUpdated, ok = p.expectString()
		case tok.Is("ORGANIZATION"):
			p.advance()
			mi.Organization, ok = p.expectString()
		case tok.Is("CONTACT-INFO"):
			p.advance()
			mi.ContactInfo, ok = p.expectString()
		case tok.Is("DESCRIPTION"):
			p.advance()
			mi.Description, ok = p.expectString()
		case tok.Is("REVISION"):
			p.advance()
			var rev module.Revision
			if rev.Date, ok = p.expectString(); ok && p.expectKeyword("DESCRIPTION") {
				rev.Description, ok = p.expectString()
				mi.Revisions = append(mi.Revisions, rev)
			} else {
				ok = false
			}
		default:
			p.unexpectedClause("MODULE-IDENTITY")
			return nil
		}
		if !ok {
			return nil
		}
	}
	oid, ok := p.parseAssignedOid()
	if !ok {
		return nil
	}
	mi.Oid = oid
	mi.Span = p.spanFrom(name)
	return mi
}

func (p *Parser) parseObjectIdentity() module.Declaration {
	name := p.advance()
	p.advance()
	oi := &module.ObjectIdentity{Name: name.Text}
	for !p.check(lexer.TokAssign) {
		if handled, ok := p.textClause(&oi.Description, &oi.Reference); handled {
			if !ok {
				return nil
			}
			continue
		}
		if !p.checkKeyword("STATUS") {
			p.unexpectedClause("OBJECT-IDENTITY")
			return nil
		}
		var ok bool
		if oi.Status, ok = p.parseStatus(); !ok {
			return nil
		}
	}
	oid, ok := p.parseAssignedOid()
	if !ok {
		return nil
	}
	oi.Oid = oid
	oi.Span = p.spanFrom(name)
	return oi
}

func (p *Parser) parseNotificationType() module.Declaration {
	name := p.advance()
	p.advance()
	n := &module.Notification{Name: name.Text}
	for !p.check(lexer.TokAssign) {
		if handled, ok := p.textClause(&n.Description, &n.Reference); handled {
			if !ok {
				return nil
			}
			continue
		}
		ok := true
		switch {
		case p.checkKeyword("OBJECTS"):
			p.advance()
			n.Objects, ok = p.parseNameList()
		case p.checkKeyword("STATUS"):
			n.Status, ok = p.parseStatus()
		default:
			p.unexpectedClause("NOTIFICATION-TYPE")
			return nil
		}
		if !ok {
			return nil
		}
	}
	oid, ok := p.parseAssignedOid()
	if !ok {
		return nil
	}
	n.Oid = oid
	n.Span = p.spanFrom(name)
	return n
}

// parseTrapType reads an SMIv1 TRAP-TYPE. The notification OID is
// { enterprise 0 number }.
func (p *Parser) parseTrapType() module.Declaration {
	name := p.advance()
	p.advance()
	n := &module.Notification{Name: name.Text, Trap: &module.Trap{}, Status: types.StatusCurrent}
	for !p.check(lexer.TokAssign) {
		if handled, ok := p.textClause(&n.Description, &n.Reference); handled {
			if !ok {
				return nil
			}
			continue
		}
		ok := true
		switch {
		case p.checkKeyword("ENTERPRISE"):
			p.advance()
			if p.check(lexer.TokLBrace) {
				var names []string
				if names, ok = p.parseNameList(); ok && len(names) > 0 {
					n.Trap.Enterprise = names[0]
				}
			} else {
				var tok lexer.Token
				tok, ok = p.expectIdent()
				n.Trap.Enterprise = tok.Text
			}
		case p.checkKeyword("VARIABLES"):
			p.advance()
			n.Objects, ok = p.parseNameList()
		default:
			p.unexpectedClause("TRAP-TYPE")
			return nil
		}
		if !ok {
			return nil
		}
	}
	p.advance() // ::=
	num, ok := p.expect(lexer.TokNumber)
	if !ok {
		return nil
	}
	v, err := strconv.ParseUint(num.Text, 10, 32)
	if err != nil || n.Trap.Enterprise == "" {
		p.errorf(num.Span, "invalid TRAP-TYPE %s", name.Text)
		return nil
	}
	n.Trap.Number = uint32(v)
	n.Oid = module.OidValue{Arcs: []module.Arc{
		{Name: n.Trap.Enterprise},
		{Number: 0, HasNumber: true},
		{Number: uint32(v), HasNumber: true},
	}}
	n.Span = p.spanFrom(name)
	return n
}

func (p *Parser) parseObjectGroup() module.Declaration {
	name := p.advance()
	p.advance()
	g := &module.ObjectGroup{Name: name.Text}
	for !p.check(lexer.TokAssign) {
		if handled, ok := p.textClause(&g.Description, &g.Reference); handled {
			if !ok {
				return nil
			}
			continue
		}
		ok := true
		switch {
		case p.checkKeyword("OBJECTS"):
			p.advance()
			g.Objects, ok = p.parseNameList()
		case p.checkKeyword("STATUS"):
			g.Status, ok = p.parseStatus()
		default:
			p.unexpectedClause("OBJECT-GROUP")
			return nil
		}
		if !ok {
			return nil
		}
	}
	oid, ok := p.parseAssignedOid()
	if !ok {
		return nil
	}
	g.Oid = oid
	g.Span = p.spanFrom(name)
	return g
}

func (p *Parser) parseNotificationGroup() module.Declaration {
	name := p.advance()
	p.advance()
	g := &module.NotificationGroup{Name: name.Text}
	for !p.check(lexer.TokAssign) {
		if handled, ok := p.textClause(&g.Description, &g.Reference); handled {
			if !ok {
				return nil
			}
			continue
		}
		ok := true
		switch {
		case p.checkKeyword("NOTIFICATIONS"):
			p.advance()
			g.Notifications, ok = p.parseNameList()
		case p.checkKeyword("STATUS"):
			g.Status, ok = p.parseStatus()
		default:
			p.unexpectedClause("NOTIFICATION-GROUP")
			return nil
		}
		if !ok {
			return nil
		}
	}
	oid, ok := p.parseAssignedOid()
	if !ok {
		return nil
	}
	g.Oid = oid
	g.Span = p.spanFrom(name)
	return g
}

func (p *Parser) parseModuleCompliance() module.Declaration {
	name := p.advance()
	p.advance()
	c := &module.Compliance{Name: name.Text}
	for !p.check(lexer.TokAssign) {
		if handled, ok := p.textClause(&c.Description, &c.Reference); handled {
			if !ok {
				return nil
			}
			continue
		}
		ok := true
		switch {
		case p.checkKeyword("STATUS"):
			c.Status, ok = p.parseStatus()
		case p.checkKeyword("MODULE"):
			var cm module.ComplianceModule
			cm, ok = p.parseComplianceModule()
			c.Modules = append(c.Modules, cm)
		default:
			p.unexpectedClause("MODULE-COMPLIANCE")
			return nil
		}
		if !ok {
			return nil
		}
	}
	oid, ok := p.parseAssignedOid()
	if !ok {
		return nil
	}
	c.Oid = oid
	c.Span = p.spanFrom(name)
	return c
}

// parseComplianceModule reads one MODULE clause with its groups and
// object refinements.
func (p *Parser) parseComplianceModule() (module.ComplianceModule, bool) {
	p.advance() // MODULE
	var cm module.ComplianceModule
	if p.check(lexer.TokUppercaseIdent) {
		cm.Module = p.advance().Text
		if p.check(lexer.TokLBrace) {
			p.skipBraces()
		}
	}
	for {
		ok := true
		switch {
		case p.checkKeyword("MANDATORY-GROUPS"):
			p.advance()
			cm.MandatoryGroups, ok = p.parseNameList()
		case p.checkKeyword("GROUP"):
			p.advance()
			var g lexer.Token
			if g, ok = p.expectIdent(); ok {
				cm.Groups = append(cm.Groups, g.Text)
			}
		case p.checkKeyword("OBJECT"):
			p.advance()
			var o lexer.Token
			if o, ok = p.expectIdent(); ok {
				cm.Objects = append(cm.Objects, o.Text)
			}
		case p.checkKeyword("SYNTAX"), p.checkKeyword("WRITE-SYNTAX"):
			p.advance()
			_, ok = p.parseSyntax()
		case p.checkKeyword("MIN-ACCESS"):
			_, ok = p.parseAccess()
		case p.checkKeyword("DESCRIPTION"):
			p.advance()
			_, ok = p.expectString()
		default:
			return cm, true
		}
		if !ok {
			return cm, false
		}
	}
}

func (p *Parser) parseAgentCapabilities() module.Declaration {
	name := p.advance()
	p.advance()
	ac := &module.Capabilities{Name: name.Text}
	for !p.check(lexer.TokAssign) {
		if handled, ok := p.textClause(&ac.Description, &ac.Reference); handled {
			if !ok {
				return nil
			}
			continue
		}
		ok := true
		switch {
		case p.checkKeyword("PRODUCT-RELEASE"):
			p.advance()
			ac.ProductRelease, ok = p.expectString()
		case p.checkKeyword("STATUS"):
			ac.Status, ok = p.parseStatus()
		case p.checkKeyword("SUPPORTS"):
			var s module.Supports
			s, ok = p.parseSupports()
			ac.Supports = append(ac.Supports, s)
		default:
			p.unexpectedClause("AGENT-CAPABILITIES")
			return nil
		}
		if !ok {
			return nil
		}
	}
	oid, ok := p.parseAssignedOid()
	if !ok {
		return nil
	}
	ac.Oid = oid
	ac.Span = p.spanFrom(name)
	return ac
}

func (p *Parser) parseSupports() (module.Supports, bool) {
	p.advance() // SUPPORTS
	var s module.Supports
	mod, ok := p.expectIdent()
	if !ok {
		return s, false
	}
	s.Module = mod.Text
	if p.check(lexer.TokLBrace) {
		p.skipBraces()
	}
	if !p.expectKeyword("INCLUDES") {
		return s, false
	}
	if s.Includes, ok = p.parseNameList(); !ok {
		return s, false
	}
	for {
		ok := true
		switch {
		case p.checkKeyword("VARIATION"):
			p.advance()
			var v lexer.Token
			if v, ok = p.expectIdent(); ok {
				s.Variations = append(s.Variations, v.Text)
			}
		case p.checkKeyword("SYNTAX"), p.checkKeyword("WRITE-SYNTAX"):
			p.advance()
			_, ok = p.parseSyntax()
		case p.checkKeyword("ACCESS"):
			_, ok = p.parseAccess()
		case p.checkKeyword("CREATION-REQUIRES"):
			p.advance()
			_, ok = p.parseNameList()
		case p.checkKeyword("DEFVAL"):
			p.advance()
			_, ok = p.parseDefVal()
		case p.checkKeyword("DESCRIPTION"):
			p.advance()
			_, ok = p.expectString()
		default:
			return s, true
		}
		if !ok {
			return s, false
		}
	}
}
