package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Faultbox/scenemesh/internal/config"
)

func TestCmdConfigSave(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg := config.Default()
	cfg.Mesh.ScaleCorrection = false
	if !cmdConfig(cfg, []string{"-save"}) {
		t.Fatal("config -save failed")
	}

	data, err := os.ReadFile(filepath.Join(xdg, "scenemesh", "config.yaml"))
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	want, _ := cfg.Marshal()
	if string(data) != string(want) {
		t.Errorf("saved config =\n%s\nwant\n%s", data, want)
	}
}

func TestCmdConfigOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "meshtool.yaml")

	cfg := config.Default()
	cfg.Data.SearchPaths = "/srv/models"
	if !cmdConfig(cfg, []string{"-o", path}) {
		t.Fatal("config -o failed")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config not written: %v", err)
	}
}
