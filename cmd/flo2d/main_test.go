package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlanFromFlags(t *testing.T) {
	cfg.Options = ""
	cfg.Srs = 32617
	cfg.Strict = true
	p, err := plan()
	if err != nil {
		t.Fatal(err)
	}
	if p.Srs != 32617 || !p.Strict {
		t.Errorf("flags should make the plan, got %+v", p)
	}
}

func TestPlanFromOptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	doc := "srs: 2230\nfamilies: [FPLAIN.DAT]\nschematize: [levees]\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Options = path
	cfg.Strict = true
	defer func() { cfg.Options = "" }()
	p, err := plan()
	if err != nil {
		t.Fatal(err)
	}
	if p.Srs != 2230 || !p.Strict || len(p.DatFamilies()) != 1 || len(p.Schematize) != 1 {
		t.Errorf("unexpected plan %+v", p)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"import": false, "export": false, "grid": false, "sample": false, "schematize": false, "run": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("%v is not registered", name)
		}
	}
}
