package tsgen

import (
	"regexp"
	"strings"
)

const indentUnit = "    "

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	numericPattern    = regexp.MustCompile(`^(0|[1-9][0-9]*)$`)
)

type printer struct {
	buf strings.Builder
}

func (p *printer) indent(level int) {
	p.buf.WriteString(strings.Repeat(indentUnit, level))
}

func (p *printer) writeType(t Type, level int) {
	switch v := t.(type) {
	case nil:
		p.buf.WriteString(string(Unknown))
	case Keyword:
		p.buf.WriteString(string(v))
	case Literal:
		p.buf.WriteString(string(v))
	case Raw:
		p.buf.WriteString(string(v))
	case Array:
		needsParens := false
		switch v.Elem.(type) {
		case Union, Intersection:
			needsParens = true
		}
		if needsParens {
			p.buf.WriteByte('(')
		}
		p.writeType(v.Elem, level)
		if needsParens {
			p.buf.WriteByte(')')
		}
		p.buf.WriteString("[]")
	case Tuple:
		p.buf.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.writeType(e, level)
		}
		p.buf.WriteByte(']')
	case Union:
		for i, m := range v {
			if i > 0 {
				p.buf.WriteString(" | ")
			}
			p.writeType(m, level)
		}
	case Intersection:
		for i, m := range v {
			if i > 0 {
				p.buf.WriteString(" & ")
			}
			if _, ok := m.(Union); ok {
				p.buf.WriteByte('(')
				p.writeType(m, level)
				p.buf.WriteByte(')')
				continue
			}
			p.writeType(m, level)
		}
	case *Object:
		p.writeObject(v, level)
	}
}

func (p *printer) writeObject(o *Object, level int) {
	if o == nil || len(o.Members) == 0 {
		p.buf.WriteString(string(EmptyRecord))
		return
	}
	p.buf.WriteString("{\n")
	for _, m := range o.Members {
		p.writeMember(m, level+1)
	}
	p.indent(level)
	p.buf.WriteByte('}')
}

func (p *printer) writeMember(m Member, level int) {
	p.writeDoc(m.Doc, level)
	p.indent(level)
	if m.Index {
		p.buf.WriteByte('[')
		p.buf.WriteString(m.Name)
		p.buf.WriteString(": ")
		p.buf.WriteString(m.IndexType)
		p.buf.WriteByte(']')
	} else {
		p.buf.WriteString(PropertyName(m.Name))
	}
	if m.Optional {
		p.buf.WriteByte('?')
	}
	p.buf.WriteString(": ")
	p.writeType(m.Type, level)
	p.buf.WriteString(";\n")
}

func (p *printer) writeDoc(lines []string, level int) {
	if len(lines) == 0 {
		return
	}
	if len(lines) == 1 && !strings.Contains(lines[0], "\n") {
		p.indent(level)
		p.buf.WriteString("/** ")
		p.buf.WriteString(escapeComment(lines[0]))
		p.buf.WriteString(" */\n")
		return
	}
	p.indent(level)
	p.buf.WriteString("/**\n")
	for _, line := range lines {
		for i, part := range strings.Split(escapeComment(line), "\n") {
			p.indent(level)
			if i == 0 {
				p.buf.WriteString(" * ")
			} else {
				p.buf.WriteString(" *     ")
			}
			p.buf.WriteString(strings.TrimRight(part, " \t"))
			p.buf.WriteByte('\n')
		}
	}
	p.indent(level)
	p.buf.WriteString(" */\n")
}

func escapeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}

// PropertyName returns name as written in a type literal: bare when it is an
// identifier or a non-negative integer, quoted otherwise.
func PropertyName(name string) string {
	if identifierPattern.MatchString(name) || numericPattern.MatchString(name) {
		return name
	}
	return quote(name)
}

// Declaration is a top-level exported type.
type Declaration struct {
	Name string
	Type Type
	Doc  []string
	// Interface emits `export interface Name {...}` instead of a type alias.
	// It only applies when Type is a non-empty *Object.
	Interface bool
}

// Print renders declarations as a TypeScript module.
func Print(decls []Declaration) string {
	p := &printer{}
	for _, d := range decls {
		p.writeDoc(d.Doc, 0)
		obj, isObject := d.Type.(*Object)
		if d.Interface && isObject && len(obj.Members) > 0 {
			p.buf.WriteString("export interface ")
			p.buf.WriteString(d.Name)
			p.buf.WriteByte(' ')
			p.writeObject(obj, 0)
			p.buf.WriteByte('\n')
			continue
		}
		p.buf.WriteString("export type ")
		p.buf.WriteString(d.Name)
		p.buf.WriteString(" = ")
		p.writeType(d.Type, 0)
		p.buf.WriteString(";\n")
	}
	return p.buf.String()
}
