package control

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/usace/flo2d-mutator/gpkg"
)

func TestParseKinds(t *testing.T) {
	tests := []struct {
		kind Kind
		raw  string
		ok   bool
	}{
		{Bool, "1", true},
		{Bool, "true", true},
		{Bool, "maybe", false},
		{Int, "3", true},
		{Real, "0.035", true},
		{Real, "abc", false},
		{Opaque, "anything", true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.raw, func(t *testing.T) {
			_, err := Parse(tt.kind, tt.raw)
			if (err == nil) != tt.ok {
				t.Errorf("Parse(%v, %q) error = %v", tt.kind, tt.raw, err)
			}
		})
	}
}

func TestConfigTypedView(t *testing.T) {
	cfg := NewConfig()
	cfg.Set("ICHANNEL", "1")
	cfg.Set("LGPLOT", "2")
	cfg.Set("MANNING", "0.035")
	cfg.Set("CUSTOM", "hello")
	if b, err := cfg.Bool("ICHANNEL"); err != nil || !b {
		t.Errorf("ICHANNEL should be true: %v %v", b, err)
	}
	if e, err := cfg.Enum("LGPLOT"); err != nil || e != 2 {
		t.Errorf("LGPLOT should be 2: %v %v", e, err)
	}
	if r, _ := cfg.Real("MANNING"); r != 0.035 {
		t.Errorf("unexpected MANNING %v", r)
	}
	v, err := cfg.Get("CUSTOM")
	if err != nil || v.Kind != Opaque || v.String() != "hello" {
		t.Errorf("unknown keys should pass through: %v %v", v, err)
	}
	cfg.Set("LGPLOT", "7")
	if _, err := cfg.Enum("LGPLOT"); err == nil {
		t.Errorf("LGPLOT 7 should be out of range")
	}
	if b, _ := cfg.Bool("LEVEE"); b {
		t.Errorf("unset flags default to false")
	}
}

func TestCellSize(t *testing.T) {
	cfg := NewConfig()
	var ce ConfigError
	if _, err := cfg.CellSize(); !errors.As(err, &ce) {
		t.Errorf("missing CELLSIZE should be a ConfigError, got %v", err)
	}
	cfg.Set("CELLSIZE", "0")
	if _, err := cfg.CellSize(); !errors.As(err, &ce) {
		t.Errorf("zero CELLSIZE should be a ConfigError, got %v", err)
	}
	cfg.Set("CELLSIZE", "100")
	if v, err := cfg.CellSize(); err != nil || v != 100 {
		t.Errorf("unexpected cell size %v %v", v, err)
	}
}

func TestLoadSave(t *testing.T) {
	c, err := gpkg.CreateContainer(filepath.Join(t.TempDir(), "m.gpkg"), 4326, "")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	cfg := NewConfig()
	cfg.Set("CELLSIZE", "50")
	cfg.Set("IRAIN", "1")
	if err := cfg.Save(c); err != nil {
		t.Fatal(err)
	}
	if err := Store(c, "CELLSIZE", "25"); err != nil {
		t.Fatal(err)
	}
	back, err := Load(c)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := back.CellSize(); v != 25 {
		t.Errorf("expected 25, got %v", v)
	}
	if !back.Has("IRAIN") {
		t.Errorf("IRAIN was not saved")
	}
}

func TestFileSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := OpenSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(LastDatDir, "/data/run1"); err != nil {
		t.Fatal(err)
	}
	again, err := OpenSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Get(LastDatDir) != "/data/run1" {
		t.Errorf("setting did not persist")
	}
}
