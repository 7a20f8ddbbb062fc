package control

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	Opaque Kind = iota
	Bool
	Int
	Real
	Enum
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Real:
		return "real"
	case Enum:
		return "enum"
	}
	return "opaque"
}

// Value is one typed control entry. Raw always holds the stored text.
type Value struct {
	Kind Kind
	Raw  string
	b    bool
	i    int
	r    float64
}

func (v Value) Bool() bool     { return v.b }
func (v Value) Int() int       { return v.i }
func (v Value) Real() float64  { return v.r }
func (v Value) String() string { return v.Raw }

// Parse converts raw text according to kind. Bool accepts 0/1 and true/false;
// enums are stored as integers.
func Parse(kind Kind, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	v := Value{Kind: kind, Raw: raw}
	switch kind {
	case Bool:
		switch strings.ToLower(raw) {
		case "1", "true", "t", "yes":
			v.b = true
			v.i = 1
		case "0", "false", "f", "no", "":
		default:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return v, fmt.Errorf("%q is not a boolean", raw)
			}
			v.b = f != 0
			if v.b {
				v.i = 1
			}
		}
	case Int, Enum:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return v, fmt.Errorf("%q is not an integer", raw)
		}
		v.i = int(f)
		v.r = f
	case Real:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return v, fmt.Errorf("%q is not a number", raw)
		}
		v.r = f
	}
	return v, nil
}
