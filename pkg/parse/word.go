package parse

import (
	"strings"

	"github.com/elves/minish/pkg/ast"
	"mvdan.cc/sh/v3/syntax"
)

func (c *converter) word(w *syntax.Word) *ast.Word {
	out := &ast.Word{}
	c.wordInto(out, w)
	return out
}

func (c *converter) wordInto(out *ast.Word, w *syntax.Word) {
	for _, part := range w.Parts {
		c.wordPart(out, part, false)
	}
	if len(out.Parts) == 0 {
		// Quoted empty strings, like "".
		out.AddLiteral("")
	}
}

func (c *converter) wordPart(out *ast.Word, part syntax.WordPart, quoted bool) {
	switch part := part.(type) {
	case *syntax.Lit:
		out.AddLiteral(unescape(part.Value, quoted))
	case *syntax.SglQuoted:
		if part.Dollar {
			c.errorf(part, "$'...' strings are not supported")
			return
		}
		out.AddLiteral(part.Value)
	case *syntax.DblQuoted:
		if part.Dollar {
			c.errorf(part, "$\"...\" strings are not supported")
			return
		}
		if len(part.Parts) == 0 {
			out.AddLiteral("")
		}
		for _, sub := range part.Parts {
			c.wordPart(out, sub, true)
		}
	case *syntax.ParamExp:
		if part.Excl || part.Length || part.Width || part.Index != nil ||
			part.Slice != nil || part.Repl != nil || part.Names != 0 || part.Exp != nil {
			c.errorf(part, "only plain $NAME and ${NAME} expansions are supported")
			return
		}
		out.AddEnv(part.Param.Value)
	case *syntax.CmdSubst:
		c.errorf(part, "command substitution is not supported")
	case *syntax.ArithmExp:
		c.errorf(part, "arithmetic expansion is not supported")
	default:
		c.errorf(part, "%T is not supported", part)
	}
}

// Removes backslash escapes. Outside quotes a backslash escapes any
// character; inside double quotes only $, `, ", \ and newline. An escaped
// newline is a line continuation and disappears.
func unescape(s string, quoted bool) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		next := s[i+1]
		if quoted && !strings.ContainsRune("$`\"\\\n", rune(next)) {
			b.WriteByte(s[i])
			continue
		}
		i++
		if next != '\n' {
			b.WriteByte(next)
		}
	}
	return b.String()
}
