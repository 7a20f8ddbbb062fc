package dat

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// text accumulates output lines. Fields are joined by a single blank and
// trailing padding is trimmed.
type text struct {
	b bytes.Buffer
	n int
}

func (t *text) line(fields ...string) {
	t.b.WriteString(strings.TrimRight(strings.Join(fields, " "), " "))
	t.b.WriteString("\n")
	t.n++
}

func (t *text) bytes() []byte {
	return t.b.Bytes()
}

// cell pads a grid id to ten columns.
func cell(id int) string {
	return fmt.Sprintf("%-10d", id)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

// num writes the shortest text that parses back to v.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func f3(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func opt(o Optional, format func(float64) string) []string {
	if !o.Valid {
		return nil
	}
	return []string{format(o.Value)}
}

func nums(vs []float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = num(v)
	}
	return out
}
