package gpkg

import (
	"fmt"
	"strings"
)

// sqlite limits the number of bound parameters per statement
const maxVariables = 999

// Fragment is one insert head plus the tuples to append to it.
type Fragment struct {
	Head  string
	Arity int
	rows  [][]any
}

// NewFragment starts a fragment; head is the statement up to and including
// VALUES, for example "INSERT INTO grid (fid, geom) VALUES".
func NewFragment(head string, arity int) *Fragment {
	return &Fragment{Head: head, Arity: arity}
}

func (f *Fragment) Add(values ...any) error {
	if len(values) != f.Arity {
		return fmt.Errorf("fragment %q expects %d values, got %d", f.Head, f.Arity, len(values))
	}
	f.rows = append(f.rows, values)
	return nil
}

func (f *Fragment) Len() int {
	return len(f.rows)
}

type statement struct {
	sql  string
	args []any
}

func (f *Fragment) statements() []statement {
	per := maxVariables / f.Arity
	if per < 1 {
		per = 1
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?,", f.Arity), ",") + ")"
	out := make([]statement, 0, len(f.rows)/per+1)
	for start := 0; start < len(f.rows); start += per {
		end := min(start+per, len(f.rows))
		chunk := f.rows[start:end]
		tuples := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*f.Arity)
		for i, r := range chunk {
			tuples[i] = tuple
			args = append(args, r...)
		}
		out = append(out, statement{f.Head + " " + strings.Join(tuples, ","), args})
	}
	return out
}

// BatchExecute runs every fragment in one transaction. Empty fragments are
// skipped.
func (c *Container) BatchExecute(fragments ...*Fragment) error {
	return c.InTx(func(tx *Container) error {
		for _, f := range fragments {
			if f == nil || f.Len() == 0 {
				continue
			}
			for _, s := range f.statements() {
				if _, err := tx.Exec(s.sql, s.args...); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
