package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sampleConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type validatedConfig struct {
	Port int `yaml:"port"`
}

func (c *validatedConfig) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("OTHALA_TEST_PORT", "9090")
	path := writeConfig(t, "name: othala\nport: ${OTHALA_TEST_PORT}\n")

	var got sampleConfig
	if err := Load(path, &got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "othala" || got.Port != 9090 {
		t.Errorf("loaded = %+v", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var got sampleConfig
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &got); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoad_RunsValidator(t *testing.T) {
	path := writeConfig(t, "port: -1\n")
	var got validatedConfig
	if err := Load(path, &got); err == nil {
		t.Error("invalid config should fail validation")
	}
}

func TestLoadWithDefaults_FallsBack(t *testing.T) {
	fallback := writeConfig(t, "name: fallback\nport: 1\n")
	var got sampleConfig
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"), fallback, &got); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if got.Name != "fallback" {
		t.Errorf("loaded = %+v", got)
	}
}
