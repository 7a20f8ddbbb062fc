package gpkg

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/go-errors/errors"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaScript string

const (
	applicationID = 0x47504B47 // "GPKG"
	userVersion   = 10200
)

var tableName = regexp.MustCompile(`^[a-z0-9_]+$`)

type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Container is the single connection to a model GeoPackage. Inside InTx the
// same methods run against the open transaction.
type Container struct {
	Path  string
	SrsID int
	db    *sql.DB
	q     querier
	tx    *sql.Tx
	busy  *atomic.Bool
}

func open(path string) (*Container, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ContainerError{Reason: "could not open " + path, Err: err}
	}
	// one writer; readers share the connection
	db.SetMaxOpenConns(1)
	return &Container{Path: path, db: db, q: db, busy: &atomic.Bool{}}, nil
}

// CreateContainer builds a new GeoPackage from the bundled schema and
// registers every geometry table under srsID. A definition is only needed
// when srsID is not already known to the container.
func CreateContainer(path string, srsID int, definition string) (*Container, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, ContainerError{Reason: path + " already exists"}
	}
	c, err := open(path)
	if err != nil {
		return nil, err
	}
	for _, stmt := range strings.Split(schemaScript, ";\n") {
		if strings.TrimSpace(stripComments(stmt)) == "" {
			continue
		}
		if _, err := c.db.Exec(stmt); err != nil {
			c.Close()
			return nil, ContainerError{Reason: "schema script failed", Err: err}
		}
	}
	for _, pragma := range []string{
		fmt.Sprintf("PRAGMA application_id = %d", applicationID),
		fmt.Sprintf("PRAGMA user_version = %d", userVersion),
	} {
		if _, err := c.db.Exec(pragma); err != nil {
			c.Close()
			return nil, ContainerError{Reason: "could not stamp application id", Err: err}
		}
	}
	if err := c.registerSrs(srsID, definition); err != nil {
		c.Close()
		return nil, err
	}
	c.SrsID = srsID
	err = c.InTx(func(tx *Container) error {
		for name, geomType := range GeometryTables {
			_, err := tx.Exec("INSERT INTO gpkg_contents (table_name, data_type, identifier, srs_id) VALUES (?, 'features', ?, ?)", name, name, srsID)
			if err != nil {
				return err
			}
			_, err = tx.Exec("INSERT INTO gpkg_geometry_columns (table_name, column_name, geometry_type_name, srs_id, z, m) VALUES (?, 'geom', ?, ?, 0, 0)", name, geomType, srsID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.Close()
		return nil, ContainerError{Reason: "could not register geometry tables", Err: err}
	}
	return c, nil
}

func (c *Container) registerSrs(srsID int, definition string) error {
	var n int
	if err := c.db.QueryRow("SELECT count(*) FROM gpkg_spatial_ref_sys WHERE srs_id = ?", srsID).Scan(&n); err != nil {
		return ContainerError{Reason: "could not read spatial reference systems", Err: err}
	}
	if n > 0 {
		return nil
	}
	if definition == "" {
		return ContainerError{Reason: fmt.Sprintf("srs %v is unknown and no definition was given", srsID)}
	}
	_, err := c.db.Exec("INSERT INTO gpkg_spatial_ref_sys (srs_name, srs_id, organization, organization_coordsys_id, definition) VALUES (?, ?, 'EPSG', ?, ?)",
		fmt.Sprintf("EPSG:%v", srsID), srsID, srsID, definition)
	if err != nil {
		return ContainerError{Reason: "could not register srs", Err: err}
	}
	return nil
}

// OpenContainer connects to an existing file and checks it is a GeoPackage by
// its application id and gpkg_contents table.
func OpenContainer(path string) (*Container, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, ContainerError{Reason: "no container at " + path, Err: err}
	}
	c, err := open(path)
	if err != nil {
		return nil, err
	}
	var id int64
	if err := c.db.QueryRow("PRAGMA application_id").Scan(&id); err != nil {
		c.Close()
		return nil, ContainerError{Reason: "could not read application id of " + path, Err: err}
	}
	if id != applicationID {
		c.Close()
		return nil, ContainerError{Reason: fmt.Sprintf("%v is not a GeoPackage, application id is %#x", path, id)}
	}
	var n int
	if err := c.db.QueryRow("SELECT count(*) FROM gpkg_contents").Scan(&n); err != nil {
		c.Close()
		return nil, ContainerError{Reason: path + " is not a valid GeoPackage", Err: err}
	}
	var srs sql.NullInt64
	err = c.db.QueryRow("SELECT srs_id FROM gpkg_geometry_columns WHERE table_name = 'grid'").Scan(&srs)
	if err != nil && err != sql.ErrNoRows {
		c.Close()
		return nil, ContainerError{Reason: "could not read grid srs", Err: err}
	}
	if srs.Valid {
		c.SrsID = int(srs.Int64)
	}
	return c, nil
}

func (c *Container) Close() error {
	if c.tx != nil {
		return errors.New("cannot close a container from inside a transaction")
	}
	return c.db.Close()
}

// statementError marks a statement the container could not run, such as a
// missing table or a lost connection.
func statementError(err error) error {
	return ContainerError{Reason: "statement failed", Err: errors.Wrap(err, 1)}
}

func (c *Container) Exec(query string, args ...any) (sql.Result, error) {
	r, err := c.q.Exec(query, args...)
	if err != nil {
		return nil, statementError(err)
	}
	return r, nil
}

// Query is the cursor returning form of Exec. Rows must be closed before the
// next write because the connection is shared.
func (c *Container) Query(query string, args ...any) (*sql.Rows, error) {
	r, err := c.q.Query(query, args...)
	if err != nil {
		return nil, statementError(err)
	}
	return r, nil
}

func (c *Container) QueryRow(query string, args ...any) *sql.Row {
	return c.q.QueryRow(query, args...)
}

// InTx runs fn inside a transaction and commits when it returns nil. Nested
// calls join the outer transaction.
func (c *Container) InTx(fn func(tx *Container) error) error {
	if c.tx != nil {
		return fn(c)
	}
	tx, err := c.db.Begin()
	if err != nil {
		return ContainerError{Reason: "could not begin transaction", Err: err}
	}
	inner := *c
	inner.tx = tx
	inner.q = tx
	if err := fn(&inner); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return ContainerError{Reason: "commit failed", Err: err}
	}
	return nil
}

// Acquire claims the container for a worker task. It returns false when a
// task already holds it.
func (c *Container) Acquire() bool {
	return c.busy.CompareAndSwap(false, true)
}

func (c *Container) Release() {
	c.busy.Store(false)
}

func (c *Container) Busy() bool {
	return c.busy.Load()
}

func checkTable(name string) error {
	if !tableName.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

func stripComments(stmt string) string {
	lines := strings.Split(stmt, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "--") {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
