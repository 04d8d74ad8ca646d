// Package ast defines the command tree consumed by the evaluator.
//
// A tree is built for one input line. Leaves are simple commands; internal
// nodes join exactly two children with an operator. Trees are never shared
// between nodes and never mutated after construction.
package ast

import (
	"os"
	"strconv"
	"strings"
)

type WordPartKind uint8

const (
	// Literal text, already unquoted.
	Literal WordPartKind = iota
	// Environment variable, resolved when the word is read.
	EnvVar
)

type WordPart struct {
	Kind  WordPartKind `json:"kind,omitempty"`
	Value string       `json:"value"`
}

// Word is a token made up of literal and substitutable parts.
type Word struct {
	Parts []WordPart `json:"parts"`
}

// Lit returns a Word made up of a single literal part.
func Lit(s string) *Word {
	return &Word{[]WordPart{{Literal, s}}}
}

// Env returns a Word that expands the named environment variable.
func Env(name string) *Word {
	return &Word{[]WordPart{{EnvVar, name}}}
}

// Text resolves the word against the current process environment. A nil Word
// resolves to the empty string.
func (w *Word) Text() string {
	if w == nil {
		return ""
	}
	if len(w.Parts) == 1 && w.Parts[0].Kind == Literal {
		return w.Parts[0].Value
	}
	var b strings.Builder
	for _, part := range w.Parts {
		switch part.Kind {
		case EnvVar:
			b.WriteString(os.Getenv(part.Value))
		default:
			b.WriteString(part.Value)
		}
	}
	return b.String()
}

// AddLiteral appends literal text, merging it with a trailing literal part.
func (w *Word) AddLiteral(s string) {
	if n := len(w.Parts); n > 0 && w.Parts[n-1].Kind == Literal {
		w.Parts[n-1].Value += s
		return
	}
	w.Parts = append(w.Parts, WordPart{Literal, s})
}

// AddEnv appends an environment variable part.
func (w *Word) AddEnv(name string) {
	w.Parts = append(w.Parts, WordPart{EnvVar, name})
}

// String returns the word in source form, with variable parts written as
// ${NAME}.
func (w *Word) String() string {
	if w == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range w.Parts {
		if part.Kind == EnvVar {
			b.WriteString("${" + part.Value + "}")
		} else {
			b.WriteString(part.Value)
		}
	}
	return b.String()
}

// IOFlags select the open mode of output redirections.
type IOFlags uint8

const (
	IOOutAppend IOFlags = 1 << iota
	IOErrAppend
)

// Append reports whether either output target is opened in append mode.
func (f IOFlags) Append() bool { return f&(IOOutAppend|IOErrAppend) != 0 }

// Simple is a leaf command. A nil Verb makes the command a no-op that the
// evaluator reports as a failure.
type Simple struct {
	Verb    *Word   `json:"verb,omitempty"`
	Params  []*Word `json:"params,omitempty"`
	In      *Word   `json:"in,omitempty"`
	Out     *Word   `json:"out,omitempty"`
	Err     *Word   `json:"err,omitempty"`
	IOFlags IOFlags `json:"io_flags,omitempty"`
}

type Op uint8

const (
	OpNone Op = iota
	OpSequential
	OpParallel
	OpPipe
	// Right side runs iff the left side failed (||).
	OpCondNonzero
	// Right side runs iff the left side succeeded (&&).
	OpCondZero
)

var opNames = [...]string{
	OpNone:        "None",
	OpSequential:  "Sequential",
	OpParallel:    "Parallel",
	OpPipe:        "Pipe",
	OpCondNonzero: "CondNonzero",
	OpCondZero:    "CondZero",
}

var opSymbols = [...]string{
	OpSequential:  ";",
	OpParallel:    "&",
	OpPipe:        "|",
	OpCondNonzero: "||",
	OpCondZero:    "&&",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// Symbol returns the operator as written in source.
func (op Op) Symbol() string {
	if int(op) < len(opSymbols) {
		return opSymbols[op]
	}
	return "?"
}

// Node is either a leaf (Op == OpNone, Simple set) or an operator node with
// both Left and Right set.
type Node struct {
	Op     Op      `json:"op,omitempty"`
	Simple *Simple `json:"simple,omitempty"`
	Left   *Node   `json:"left,omitempty"`
	Right  *Node   `json:"right,omitempty"`
}

func Leaf(s *Simple) *Node {
	return &Node{Op: OpNone, Simple: s}
}

func Binary(op Op, left, right *Node) *Node {
	return &Node{Op: op, Left: left, Right: right}
}

// Command is a shorthand for a leaf running verb with literal params.
func Command(verb string, params ...string) *Node {
	s := &Simple{Verb: Lit(verb)}
	for _, param := range params {
		s.Params = append(s.Params, Lit(param))
	}
	return Leaf(s)
}

// IsLeaf reports whether n is a simple command.
func (n *Node) IsLeaf() bool { return n.Op == OpNone }

// String renders the tree on one line. Operator nodes nested inside other
// operator nodes are parenthesized.
func (n *Node) String() string {
	var b strings.Builder
	writeNode(&b, n, false)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, nested bool) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	if n.IsLeaf() {
		writeSimple(b, n.Simple)
		return
	}
	if nested {
		b.WriteByte('(')
	}
	writeNode(b, n.Left, true)
	b.WriteString(" " + n.Op.Symbol() + " ")
	writeNode(b, n.Right, true)
	if nested {
		b.WriteByte(')')
	}
}

func (s *Simple) String() string {
	var b strings.Builder
	writeSimple(&b, s)
	return b.String()
}

func writeSimple(b *strings.Builder, s *Simple) {
	if s == nil {
		b.WriteString("<nil>")
		return
	}
	var fields []string
	if s.Verb != nil {
		fields = append(fields, s.Verb.String())
	}
	for _, param := range s.Params {
		fields = append(fields, param.String())
	}
	if s.In != nil {
		fields = append(fields, "<"+s.In.String())
	}
	outOp, errOp := ">", "2>"
	if s.IOFlags.Append() {
		outOp, errOp = ">>", "2>>"
	}
	if s.Out != nil {
		fields = append(fields, outOp+s.Out.String())
	}
	if s.Err != nil {
		fields = append(fields, errOp+s.Err.String())
	}
	b.WriteString(strings.Join(fields, " "))
}
