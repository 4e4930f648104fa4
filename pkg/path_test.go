package pkg

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestEnvIdentifier(t *testing.T) {
	got := EnvIdentifier("path")

	if got != strings.ToUpper(got) {
		t.Errorf("EnvIdentifier(%q) = %q, want upper case", "path", got)
	}

	if !strings.HasSuffix(got, "_PATH") {
		t.Errorf("EnvIdentifier(%q) = %q, want suffix _PATH", "path", got)
	}

	if strings.ContainsAny(got, "-. ") {
		t.Errorf("EnvIdentifier(%q) = %q contains separators", "path", got)
	}
}

func TestConfigPath(t *testing.T) {
	if got := ConfigPath(); got != ConfigDir() {
		t.Errorf("ConfigPath() = %q, want %q", got, ConfigDir())
	}

	want := filepath.Join(ConfigDir(), "config")
	if got := ConfigPath("config"); got != want {
		t.Errorf("ConfigPath(config) = %q, want %q", got, want)
	}

	if filepath.Base(ConfigDir()) != Prefix() {
		t.Errorf("ConfigDir() = %q, want base %q", ConfigDir(), Prefix())
	}
}

func TestPrefix(t *testing.T) {
	if Prefix() == "" {
		t.Error("Prefix() is empty")
	}

	if strings.HasPrefix(Prefix(), ".") {
		t.Errorf("Prefix() = %q has a leading dot", Prefix())
	}
}
