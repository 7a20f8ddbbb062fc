package gpkg

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-errors/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// GridCentroids resolves cell ids to their centroids. Every id must exist.
func (c *Container) GridCentroids(ids []int) (map[int]orb.Point, error) {
	out := make(map[int]orb.Point, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	unique := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	for start := 0; start < len(unique); start += maxVariables {
		chunk := unique[start:min(start+maxVariables, len(unique))]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		q := fmt.Sprintf("SELECT fid, geom FROM grid WHERE fid IN (%v)", strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ","))
		rows, err := c.Query(q, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var fid int
			var blob []byte
			if err := rows.Scan(&fid, &blob); err != nil {
				rows.Close()
				return nil, errors.Wrap(err, 0)
			}
			p, err := centroidOf(blob)
			if err != nil {
				rows.Close()
				return nil, err
			}
			out[fid] = p
		}
		rows.Close()
	}
	for _, id := range unique {
		if _, ok := out[id]; !ok {
			return nil, ReferenceError{Table: "grid", Fid: id}
		}
	}
	return out, nil
}

func (c *Container) SingleCentroid(id int) (orb.Point, error) {
	m, err := c.GridCentroids([]int{id})
	if err != nil {
		return orb.Point{}, err
	}
	return m[id], nil
}

// AllCentroids reads every cell centroid keyed by fid.
func (c *Container) AllCentroids() (map[int]orb.Point, error) {
	rows, err := c.Query("SELECT fid, geom FROM grid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int]orb.Point)
	for rows.Next() {
		var fid int
		var blob []byte
		if err := rows.Scan(&fid, &blob); err != nil {
			return nil, errors.Wrap(err, 0)
		}
		p, err := centroidOf(blob)
		if err != nil {
			return nil, err
		}
		out[fid] = p
	}
	return out, rows.Err()
}

func centroidOf(blob []byte) (orb.Point, error) {
	g, err := DecodeGeometry(blob)
	if err != nil {
		return orb.Point{}, err
	}
	if p, ok := g.(orb.Point); ok {
		return p, nil
	}
	p, _ := planar.CentroidArea(g)
	return p, nil
}

func (c *Container) IsTableEmpty(name string) (bool, error) {
	if err := checkTable(name); err != nil {
		return false, err
	}
	var exists int
	err := c.QueryRow(fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %v)", name)).Scan(&exists)
	if err != nil {
		return false, statementError(err)
	}
	return exists == 0, nil
}

func (c *Container) Count(name string) (int, error) {
	if err := checkTable(name); err != nil {
		return 0, err
	}
	var n int
	if err := c.QueryRow(fmt.Sprintf("SELECT count(*) FROM %v", name)).Scan(&n); err != nil {
		return 0, statementError(err)
	}
	return n, nil
}

// ClearTables empties the named tables and resets their autoincrement
// counters so re-imported rows get the same fids.
func (c *Container) ClearTables(names ...string) error {
	return c.InTx(func(tx *Container) error {
		for _, name := range names {
			if err := checkTable(name); err != nil {
				return err
			}
			if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %v", name)); err != nil {
				return err
			}
			if _, err := tx.Exec("DELETE FROM sqlite_sequence WHERE name = ?", name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Geometry reads and decodes the geom column of one row.
func (c *Container) Geometry(table string, fid int) (orb.Geometry, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	var blob []byte
	err := c.QueryRow(fmt.Sprintf("SELECT geom FROM %v WHERE fid = ?", table), fid).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ReferenceError{Table: table, Fid: fid}
	}
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return DecodeGeometry(blob)
}

// Encode is EncodeGeometry with the container srs.
func (c *Container) Encode(g orb.Geometry) ([]byte, error) {
	return EncodeGeometry(g, c.SrsID)
}

// UpdateExtent refreshes the bounding box recorded for a table in
// gpkg_contents.
func (c *Container) UpdateExtent(table string, b orb.Bound) error {
	_, err := c.Exec("UPDATE gpkg_contents SET min_x = ?, min_y = ?, max_x = ?, max_y = ? WHERE table_name = ?",
		b.Min[0], b.Min[1], b.Max[0], b.Max[1], table)
	return err
}
