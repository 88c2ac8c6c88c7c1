package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("DQPORTAL_TEST_KEY", "set")
	if got := getEnv("DQPORTAL_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("getEnv = %q, want %q", got, "set")
	}
	if got := getEnv("DQPORTAL_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %q, want the fallback", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"false", true, false},
		{"not-a-bool", true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		if tt.value != "" {
			t.Setenv("DQPORTAL_TEST_BOOL", tt.value)
		} else {
			os.Unsetenv("DQPORTAL_TEST_BOOL")
		}
		if got := getEnvBool("DQPORTAL_TEST_BOOL", tt.fallback); got != tt.want {
			t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.fallback, got, tt.want)
		}
	}
}

func TestGetSecret_EnvFallback(t *testing.T) {
	// No secret file mounted in tests, so the environment wins.
	t.Setenv("PORTAL_PASSWORD", "from-env")
	if got := getSecret("PORTAL_PASSWORD", ""); got != "from-env" {
		t.Errorf("getSecret = %q, want %q", got, "from-env")
	}
	if got := getSecret("PORTAL_USERNAME_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getSecret = %q, want the fallback", got)
	}
}

func TestGodotenvQuoting(t *testing.T) {
	// Credentials regularly contain quotes; make sure the parser keeps them.
	content := `PORTAL_PASSWORD='value with "double quotes"'`
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `value with "double quotes"`
	if env["PORTAL_PASSWORD"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["PORTAL_PASSWORD"])
	}
}
