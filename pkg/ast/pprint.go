package ast

import (
	"bytes"
	"fmt"
	"strings"
)

// PprintAST renders n as an indented tree, one field per line.
func PprintAST(n *Node) string {
	var b bytes.Buffer
	pprintAST(&b, "", toPnode(n))
	return b.String()
}

// An intermediate representation for nodes, keeping only the fields that are
// set.
type pnode struct {
	name   string
	fields []*pfield
}

type pfield struct {
	name   string
	scalar interface{}
	node   *pnode
}

func (p *pnode) addScalar(name string, v interface{}) {
	p.fields = append(p.fields, &pfield{name: name, scalar: v})
}

func (p *pnode) addNode(name string, n *pnode) {
	p.fields = append(p.fields, &pfield{name: name, node: n})
}

func toPnode(n *Node) *pnode {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return simpleToPnode(n.Simple)
	}
	p := &pnode{name: n.Op.String()}
	p.addNode("Left", toPnode(n.Left))
	p.addNode("Right", toPnode(n.Right))
	return p
}

func simpleToPnode(s *Simple) *pnode {
	if s == nil {
		return nil
	}
	p := &pnode{name: "Simple"}
	if s.Verb != nil {
		p.addScalar("Verb", s.Verb.String())
	}
	if len(s.Params) > 0 {
		params := make([]string, len(s.Params))
		for i, param := range s.Params {
			params[i] = param.String()
		}
		p.addScalar("Params", params)
	}
	for _, rd := range []struct {
		name string
		w    *Word
	}{{"In", s.In}, {"Out", s.Out}, {"Err", s.Err}} {
		if rd.w != nil {
			p.addScalar(rd.name, rd.w.String())
		}
	}
	if s.IOFlags != 0 {
		p.addScalar("IOFlags", s.IOFlags)
	}
	return p
}

func pprintAST(buf *bytes.Buffer, indent string, p *pnode) {
	if p == nil {
		buf.WriteString("nil")
		return
	}

	buf.WriteString(p.name)

	indent1 := indent + "  "

	for _, f := range p.fields {
		buf.WriteString("\n" + indent1 + "." + f.name + " = ")
		switch {
		case f.node != nil:
			pprintAST(buf, indent1, f.node)
		case f.scalar != nil:
			switch v := f.scalar.(type) {
			case string, []string:
				fmt.Fprintf(buf, "%q", v)
			default:
				fmt.Fprint(buf, v)
			}
		default:
			buf.WriteString("nil")
		}
	}
}

func (f IOFlags) String() string {
	var names []string
	if f&IOOutAppend != 0 {
		names = append(names, "OutAppend")
	}
	if f&IOErrAppend != 0 {
		names = append(names, "ErrAppend")
	}
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}
