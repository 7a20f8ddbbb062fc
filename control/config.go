package control

import (
	"sort"

	"github.com/go-errors/errors"
	"github.com/usace/flo2d-mutator/gpkg"
)

// Config is a typed view over the cont table.
type Config struct {
	values map[string]string
}

func NewConfig() Config {
	return Config{values: make(map[string]string)}
}

// Load reads every cont row.
func Load(c *gpkg.Container) (Config, error) {
	cfg := NewConfig()
	rows, err := c.Query("SELECT name, value FROM cont")
	if err != nil {
		return cfg, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var value *string
		if err := rows.Scan(&name, &value); err != nil {
			return cfg, errors.Wrap(err, 0)
		}
		if value != nil {
			cfg.values[name] = *value
		} else {
			cfg.values[name] = ""
		}
	}
	return cfg, rows.Err()
}

// Save writes the given keys back, replacing stored values.
func (cfg Config) Save(c *gpkg.Container, names ...string) error {
	if len(names) == 0 {
		names = cfg.Names()
	}
	return c.InTx(func(tx *gpkg.Container) error {
		for _, n := range names {
			v, ok := cfg.values[n]
			if !ok {
				continue
			}
			note := ""
			if k, ok := Lookup(n); ok {
				note = k.Note
			}
			_, err := tx.Exec("INSERT INTO cont (name, value, note) VALUES (?, ?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value", n, v, note)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Store sets a single key in the container without loading the others.
func Store(c *gpkg.Container, name, value string) error {
	cfg := NewConfig()
	cfg.Set(name, value)
	return cfg.Save(c, name)
}

func (cfg Config) Set(name, raw string) {
	cfg.values[name] = raw
}

func (cfg Config) Has(name string) bool {
	_, ok := cfg.values[name]
	return ok
}

// Raw returns the stored text, falling back to the schema default.
func (cfg Config) Raw(name string) string {
	if v, ok := cfg.values[name]; ok {
		return v
	}
	if k, ok := Lookup(name); ok {
		return k.Default
	}
	return ""
}

func (cfg Config) Names() []string {
	out := make([]string, 0, len(cfg.values))
	for n := range cfg.values {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Get parses the key with its schema kind and checks its range. Unknown keys
// come back as opaque values.
func (cfg Config) Get(name string) (Value, error) {
	k, ok := Lookup(name)
	if !ok {
		raw, present := cfg.values[name]
		if !present {
			return Value{}, ConfigError{Name: name, Reason: "is not set"}
		}
		return Value{Kind: Opaque, Raw: raw}, nil
	}
	raw := cfg.Raw(name)
	v, err := Parse(k.Kind, raw)
	if err != nil {
		return v, ConfigError{Name: name, Reason: err.Error()}
	}
	if !k.check(v) {
		return v, ConfigError{Name: name, Reason: "is out of range"}
	}
	return v, nil
}

func (cfg Config) Bool(name string) (bool, error) {
	v, err := cfg.Get(name)
	return v.Bool(), err
}

func (cfg Config) Int(name string) (int, error) {
	v, err := cfg.Get(name)
	return v.Int(), err
}

func (cfg Config) Real(name string) (float64, error) {
	v, err := cfg.Get(name)
	return v.Real(), err
}

func (cfg Config) Enum(name string) (int, error) {
	v, err := cfg.Get(name)
	return v.Int(), err
}

// RealOr is Real with a fallback for unset or unparsable keys.
func (cfg Config) RealOr(name string, fallback float64) float64 {
	if !cfg.Has(name) {
		return fallback
	}
	v, err := cfg.Real(name)
	if err != nil {
		return fallback
	}
	return v
}

// CellSize is required by every geometric routine.
func (cfg Config) CellSize() (float64, error) {
	if !cfg.Has("CELLSIZE") {
		return 0, ConfigError{Name: "CELLSIZE", Reason: "is not set"}
	}
	v, err := cfg.Real("CELLSIZE")
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, ConfigError{Name: "CELLSIZE", Reason: "must be greater than zero"}
	}
	return v, nil
}
