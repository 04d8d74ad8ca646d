// Package parse turns one line of shell input into a command tree.
//
// Tokenizing and grammar are delegated to mvdan.cc/sh; this package only maps
// the subset the evaluator understands onto [ast.Node] and rejects the rest.
package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/elves/minish/pkg/ast"
	"mvdan.cc/sh/v3/syntax"
)

// Parse parses text into a command tree. It returns (nil, nil) when text
// contains no commands. The name is used in error messages of the underlying
// parser.
func Parse(name, text string) (*ast.Node, error) {
	f, err := syntax.NewParser().Parse(strings.NewReader(text), name)
	if err != nil {
		return nil, convertError(err)
	}
	c := &converter{}
	n := c.stmts(f.Stmts)
	if len(c.err.Errors) > 0 {
		return nil, c.err
	}
	return n, nil
}

func convertError(err error) error {
	var pe syntax.ParseError
	if errors.As(err, &pe) {
		return Error{[]ErrorEntry{{int(pe.Pos.Offset()), pe.Text}}}
	}
	var le syntax.LangError
	if errors.As(err, &le) {
		return Error{[]ErrorEntry{{int(le.Pos.Offset()), le.Feature + " is not supported"}}}
	}
	return Error{[]ErrorEntry{{0, err.Error()}}}
}

type converter struct {
	err Error
}

func (c *converter) errorf(n syntax.Node, format string, a ...interface{}) {
	c.err.Errors = append(c.err.Errors,
		ErrorEntry{int(n.Pos().Offset()), fmt.Sprintf(format, a...)})
}

// Statement lists are joined left-associatively with ";". A background
// statement is joined with the statement after it with "&".
func (c *converter) stmts(stmts []*syntax.Stmt) *ast.Node {
	var result *ast.Node
	for i := 0; i < len(stmts); i++ {
		n := c.stmt(stmts[i])
		for stmts[i].Background {
			if i+1 == len(stmts) {
				c.errorf(stmts[i], "background commands are not supported; \"&\" needs a right-hand side")
				break
			}
			i++
			n = ast.Binary(ast.OpParallel, n, c.stmt(stmts[i]))
		}
		if result == nil {
			result = n
		} else {
			result = ast.Binary(ast.OpSequential, result, n)
		}
	}
	return result
}

// Returned nodes are never nil, even on error, so that callers can keep
// building the tree and collect further errors.
func (c *converter) stmt(st *syntax.Stmt) *ast.Node {
	if st.Negated {
		c.errorf(st, "\"!\" is not supported")
	}
	if st.Coprocess {
		c.errorf(st, "coprocesses are not supported")
	}
	switch cmd := st.Cmd.(type) {
	case nil:
		// Only redirections, like "> file". The evaluator treats a leaf
		// without a verb as a failure.
		s := &ast.Simple{}
		c.redirs(s, st.Redirs)
		return ast.Leaf(s)
	case *syntax.CallExpr:
		return c.call(st, cmd)
	case *syntax.BinaryCmd:
		if len(st.Redirs) > 0 {
			c.errorf(st.Redirs[0], "redirections on compound commands are not supported")
		}
		var op ast.Op
		switch cmd.Op {
		case syntax.AndStmt:
			op = ast.OpCondZero
		case syntax.OrStmt:
			op = ast.OpCondNonzero
		case syntax.Pipe:
			op = ast.OpPipe
		default:
			c.errorf(cmd, "operator %v is not supported", cmd.Op)
			op = ast.OpSequential
		}
		return ast.Binary(op, c.stmt(cmd.X), c.stmt(cmd.Y))
	default:
		c.errorf(st, "%v is not supported", describe(cmd))
		return ast.Leaf(&ast.Simple{})
	}
}

func (c *converter) call(st *syntax.Stmt, cmd *syntax.CallExpr) *ast.Node {
	s := &ast.Simple{}
	c.redirs(s, st.Redirs)
	if len(cmd.Assigns) > 0 {
		if len(cmd.Args) > 0 {
			c.errorf(cmd.Assigns[0], "assignments before a command are not supported")
		} else {
			return c.assigns(s, cmd.Assigns)
		}
	}
	if len(cmd.Args) > 0 {
		s.Verb = c.word(cmd.Args[0])
		for _, arg := range cmd.Args[1:] {
			s.Params = append(s.Params, c.word(arg))
		}
	}
	return ast.Leaf(s)
}

// Each assignment becomes a leaf whose verb is NAME=VALUE. Several assignments
// are chained with ";". Redirections stay on the first leaf.
func (c *converter) assigns(first *ast.Simple, assigns []*syntax.Assign) *ast.Node {
	var result *ast.Node
	for i, as := range assigns {
		if as.Append || as.Naked || as.Index != nil || as.Array != nil || as.Name == nil {
			c.errorf(as, "only NAME=VALUE assignments are supported")
			continue
		}
		verb := ast.Lit(as.Name.Value + "=")
		if as.Value != nil {
			c.wordInto(verb, as.Value)
		}
		s := &ast.Simple{Verb: verb}
		if i == 0 {
			first.Verb = verb
			s = first
		}
		if result == nil {
			result = ast.Leaf(s)
		} else {
			result = ast.Binary(ast.OpSequential, result, ast.Leaf(s))
		}
	}
	if result == nil {
		return ast.Leaf(first)
	}
	return result
}

func (c *converter) redirs(s *ast.Simple, redirs []*syntax.Redirect) {
	for _, rd := range redirs {
		fd := ""
		if rd.N != nil {
			fd = rd.N.Value
		}
		if rd.Word == nil {
			c.errorf(rd, "redirection %v is not supported", rd.Op)
			continue
		}
		w := c.word(rd.Word)
		switch rd.Op {
		case syntax.RdrIn:
			if fd != "" && fd != "0" {
				c.errorf(rd, "input redirection of fd %v is not supported", fd)
				continue
			}
			s.In = w
		case syntax.RdrOut, syntax.AppOut:
			appending := rd.Op == syntax.AppOut
			switch fd {
			case "", "1":
				s.Out = w
				if appending {
					s.IOFlags |= ast.IOOutAppend
				}
			case "2":
				s.Err = w
				if appending {
					s.IOFlags |= ast.IOErrAppend
				}
			default:
				c.errorf(rd, "output redirection of fd %v is not supported", fd)
			}
		case syntax.RdrAll, syntax.AppAll:
			s.Out, s.Err = w, w
			if rd.Op == syntax.AppAll {
				s.IOFlags |= ast.IOOutAppend | ast.IOErrAppend
			}
		default:
			c.errorf(rd, "redirection %v is not supported", rd.Op)
		}
	}
}

func describe(cmd syntax.Command) string {
	switch cmd.(type) {
	case *syntax.Subshell:
		return "subshell"
	case *syntax.Block:
		return "block"
	case *syntax.IfClause:
		return "if clause"
	case *syntax.WhileClause:
		return "while clause"
	case *syntax.ForClause:
		return "for clause"
	case *syntax.CaseClause:
		return "case clause"
	case *syntax.FuncDecl:
		return "function declaration"
	default:
		return fmt.Sprintf("%T", cmd)
	}
}
