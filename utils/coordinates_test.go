package utils

import (
	"path/filepath"
	"testing"
)

func TestBytesToCoordinateList(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want int
		ok   bool
	}{
		{"header and commas", "x,y,z\r\n1,2,3\r\n4,5,6\r\n", 2, true},
		{"whitespace", "1 2 3\n\n4\t5\t6\n", 2, true},
		{"semicolons", "1;2;3\n", 1, true},
		{"short row", "1,2,3\n4,5\n", 0, false},
		{"bad number", "1,2,3\n4,five,6\n", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cl, err := BytesToCoordinateList([]byte(tc.doc))
			if (err == nil) != tc.ok {
				t.Fatalf("ok=%v, got %v", tc.ok, err)
			}
			if tc.ok && len(cl.Coordinates) != tc.want {
				t.Errorf("expected %v points, got %v", tc.want, len(cl.Coordinates))
			}
		})
	}
}

func TestCoordinateListWriteRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "survey.csv")
	cl := CoordinateList{Coordinates: []Coordinate{{X: 10, Y: 20, Z: 1.5}, {X: 30, Y: 40, Z: 2.5}}}
	if err := cl.Write(dir, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadCoordinateList(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Coordinates) != 2 || got.Coordinates[1] != cl.Coordinates[1] {
		t.Errorf("round trip changed the points: %+v", got.Coordinates)
	}
}
