package dat

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseError carries the file and line of a malformed record.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error: %v line %v: %v", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("parse error: %v: %v", e.File, e.Reason)
}

// Optional is a trailing token that may be absent from a record.
type Optional struct {
	Value float64
	Valid bool
}

func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// Any returns nil for an absent value so it binds as SQL NULL.
func (o Optional) Any() any {
	if !o.Valid {
		return nil
	}
	return o.Value
}

// line is one non blank record with its 1 based line number.
type line struct {
	n      int
	fields []string
}

func (l line) prefix() string {
	if len(l.fields) == 0 {
		return ""
	}
	return strings.ToUpper(l.fields[0])
}

func readLines(r io.Reader) ([]line, error) {
	out := make([]line, 0)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		out = append(out, line{n: n, fields: f})
	}
	return out, sc.Err()
}

func readFile(path string) ([]line, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, ParseError{File: filepath.Base(path), Reason: err.Error()}
	}
	return readLines(bytes.NewReader(b))
}

// row converts tokens of one line and remembers the first failure so a
// family parser can read a whole record before checking.
type row struct {
	file string
	line
	err error
}

func newRow(file string, l line) *row {
	return &row{file: file, line: l}
}

func (r *row) fail(format string, a ...any) {
	if r.err == nil {
		r.err = ParseError{File: r.file, Line: r.n, Reason: fmt.Sprintf(format, a...)}
	}
}

// notBefore fails the row when its time t precedes the previous sample of
// the same series.
func (r *row) notBefore(t, prev float64) {
	if t < prev {
		r.fail("time %v is before the previous time %v", t, prev)
	}
}

// count checks the token count is within [lo, hi]; hi < 0 means unbounded.
func (r *row) count(lo, hi int) bool {
	n := len(r.fields)
	if n < lo || (hi >= 0 && n > hi) {
		if lo == hi {
			r.fail("expected %d fields, found %d", lo, n)
		} else {
			r.fail("expected %d to %d fields, found %d", lo, hi, n)
		}
		return false
	}
	return true
}

func (r *row) asStr(i int) string {
	if i >= len(r.fields) {
		r.fail("missing field %d", i+1)
		return ""
	}
	return r.fields[i]
}

func (r *row) asFloat(i int) float64 {
	s := r.asStr(i)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail("field %d %q is not a number", i+1, s)
	}
	return v
}

func (r *row) asInt(i int) int {
	s := r.asStr(i)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			r.fail("field %d %q is not an integer", i+1, s)
			return 0
		}
		return int(f)
	}
	return v
}

func (r *row) asOpt(i int) Optional {
	if i >= len(r.fields) {
		return Optional{}
	}
	return Some(r.asFloat(i))
}

// floats reads fields[from:] as numbers.
func (r *row) floats(from int) []float64 {
	out := make([]float64, 0, len(r.fields)-from)
	for i := from; i < len(r.fields); i++ {
		out = append(out, r.asFloat(i))
	}
	return out
}

// cursor walks the lines of one file.
type cursor struct {
	file  string
	lines []line
	pos   int
}

func newCursor(path string) (*cursor, error) {
	lines, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return &cursor{file: filepath.Base(path), lines: lines}, nil
}

func cursorFrom(name string, r io.Reader) (*cursor, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, ParseError{File: name, Reason: err.Error()}
	}
	return &cursor{file: name, lines: lines}, nil
}

func (c *cursor) done() bool {
	return c.pos >= len(c.lines)
}

func (c *cursor) peek() (line, bool) {
	if c.done() {
		return line{}, false
	}
	return c.lines[c.pos], true
}

func (c *cursor) next() (*row, bool) {
	if c.done() {
		return nil, false
	}
	l := c.lines[c.pos]
	c.pos++
	return newRow(c.file, l), true
}

// require returns the next row or a ParseError naming what was expected.
func (c *cursor) require(what string) (*row, error) {
	r, ok := c.next()
	if !ok {
		return nil, ParseError{File: c.file, Reason: "unexpected end of file, expected " + what}
	}
	return r, nil
}

func (c *cursor) errorf(l line, format string, a ...any) error {
	return ParseError{File: c.file, Line: l.n, Reason: fmt.Sprintf(format, a...)}
}

// eachRow applies fn to every remaining line and stops at the first error.
func (c *cursor) eachRow(fn func(r *row)) error {
	for {
		r, ok := c.next()
		if !ok {
			return nil
		}
		fn(r)
		if r.err != nil {
			return r.err
		}
	}
}
