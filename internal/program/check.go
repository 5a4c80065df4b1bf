package program

import (
	"fmt"
	"strconv"
)

// Diagnostic codes reported by Check.
const (
	CodeUnmatchedClose      = "E201"
	CodeUnterminatedLoop    = "E202"
	CodeUnterminatedComment = "E203"
	CodeEmptyDumpRange      = "E204"
)

// Severity of a diagnostic.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Diagnostic is a problem found by Check. Offset is a byte offset; Line and
// Column are 1-based, Column counted in bytes.
type Diagnostic struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Offset   int    `json:"offset"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s %s: %s", d.Line, d.Column, d.Severity, d.Code, d.Message)
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Check scans src with the lexical rules the engine uses and reports bracket,
// comment and dump-range problems. Comment bodies and dump literals are not
// scanned for brackets. Diagnostics are ordered by offset, except that
// unterminated loops are reported last.
func Check(src []byte) []Diagnostic {
	c := &checker{src: src}
	c.scan()
	return c.diags
}

type checker struct {
	src   []byte
	open  []int
	diags []Diagnostic
}

func (c *checker) scan() {
	for i := 0; i < len(c.src); i++ {
		switch c.src[i] {
		case '[':
			c.open = append(c.open, i)

		case ']':
			if len(c.open) == 0 {
				c.report(CodeUnmatchedClose, SeverityError, i, "] has no matching [")
				continue
			}
			c.open = c.open[:len(c.open)-1]

		case '/':
			next, ok := c.skipComment(i)
			if !ok {
				c.report(CodeUnterminatedComment, SeverityError, i, "block comment is never closed")
				i = len(c.src)
				continue
			}
			i = next

		case '?':
			i = c.skipDump(i)
		}
	}

	for _, pos := range c.open {
		c.report(CodeUnterminatedLoop, SeverityError, pos, "[ has no matching ]")
	}
}

// skipComment returns the index of the last byte consumed by the comment
// starting at i. A `/` that does not start a comment consumes itself and the
// byte after it.
func (c *checker) skipComment(i int) (int, bool) {
	if i+1 >= len(c.src) {
		return i, true
	}

	switch c.src[i+1] {
	case '/':
		j := i + 2
		for j < len(c.src) && c.src[j] != '\n' {
			j++
		}
		return j, true

	case '*':
		for j := i + 2; j < len(c.src); j++ {
			if c.src[j] == '*' {
				// The byte after the closing * is consumed as well.
				return j + 1, true
			}
		}
		return len(c.src), false
	}

	return i + 1, true
}

// skipDump returns the index of the last byte consumed by a
// `?start<delim>end` dump: the byte after the end literal.
func (c *checker) skipDump(i int) int {
	start, j := c.number(i + 1)
	end, k := c.number(j + 1)

	if end <= start {
		c.report(CodeEmptyDumpRange, SeverityWarning, i,
			fmt.Sprintf("memory dump range [%d, %d) is empty", start, end))
	}
	return k
}

// number parses decimal digits from i and returns the value and the index
// of the first non-digit.
func (c *checker) number(i int) (int, int) {
	j := i
	for j < len(c.src) && c.src[j] >= '0' && c.src[j] <= '9' {
		j++
	}
	if j == i {
		return 0, j
	}
	n, err := strconv.Atoi(string(c.src[i:j]))
	if err != nil {
		return 0, j
	}
	return n, j
}

func (c *checker) report(code, severity string, offset int, msg string) {
	line, col := position(c.src, offset)
	c.diags = append(c.diags, Diagnostic{
		Code:     code,
		Severity: severity,
		Message:  msg,
		Offset:   offset,
		Line:     line,
		Column:   col,
	})
}

func position(src []byte, offset int) (int, int) {
	line, col := 1, 1
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
