package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeDotEnv(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, DotEnvFile), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestResolveCredentials_EnvWins(t *testing.T) {
	dir := t.TempDir()
	writeDotEnv(t, dir, "MISTRAL_API_KEY=from-file\n")
	t.Setenv(APIKeyEnv, "from-env")
	t.Setenv(EndpointEnv, "")

	creds, err := ResolveCredentials(dir)
	if err != nil {
		t.Fatalf("ResolveCredentials error: %v", err)
	}
	if creds.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want %q", creds.APIKey, "from-env")
	}
	if creds.Source != "environment" {
		t.Errorf("Source = %q, want environment", creds.Source)
	}
}

func TestResolveCredentials_FirstFileWins(t *testing.T) {
	cwd := t.TempDir()
	exeDir := t.TempDir()
	writeDotEnv(t, cwd, "# local\nMISTRAL_API_KEY=local-key\n")
	writeDotEnv(t, exeDir, "MISTRAL_API_KEY=install-key\nCODESTRAL_URL=https://install.example/v1/chat/completions\n")
	t.Setenv(APIKeyEnv, "")
	t.Setenv(EndpointEnv, "")

	creds, err := ResolveCredentials(cwd, exeDir)
	if err != nil {
		t.Fatalf("ResolveCredentials error: %v", err)
	}
	if creds.APIKey != "local-key" {
		t.Errorf("APIKey = %q, want %q", creds.APIKey, "local-key")
	}
	if creds.Source != filepath.Join(cwd, DotEnvFile) {
		t.Errorf("Source = %q, want the cwd .env", creds.Source)
	}
	// Scanning stops at the file that provided the key.
	if creds.Endpoint != "" {
		t.Errorf("Endpoint = %q, want empty", creds.Endpoint)
	}
}

func TestResolveCredentials_FallsBackToExecutableDir(t *testing.T) {
	cwd := t.TempDir()
	exeDir := t.TempDir()
	writeDotEnv(t, cwd, "CODESTRAL_URL=https://local.example/v1/chat/completions\n")
	writeDotEnv(t, exeDir, "MISTRAL_API_KEY=install-key\nCODESTRAL_URL=https://install.example/v1/chat/completions\n")
	t.Setenv(APIKeyEnv, "")
	t.Setenv(EndpointEnv, "")

	creds, err := ResolveCredentials(cwd, exeDir)
	if err != nil {
		t.Fatalf("ResolveCredentials error: %v", err)
	}
	if creds.APIKey != "install-key" {
		t.Errorf("APIKey = %q, want %q", creds.APIKey, "install-key")
	}
	if creds.Endpoint != "https://local.example/v1/chat/completions" {
		t.Errorf("Endpoint = %q, want the first file's value", creds.Endpoint)
	}
}

func TestResolveCredentials_EndpointFromEnv(t *testing.T) {
	dir := t.TempDir()
	writeDotEnv(t, dir, "MISTRAL_API_KEY=k\nCODESTRAL_URL=https://file.example\n")
	t.Setenv(APIKeyEnv, "")
	t.Setenv(EndpointEnv, "https://env.example")

	creds, err := ResolveCredentials(dir)
	if err != nil {
		t.Fatalf("ResolveCredentials error: %v", err)
	}
	if creds.Endpoint != "https://env.example" {
		t.Errorf("Endpoint = %q, want %q", creds.Endpoint, "https://env.example")
	}
}

func TestResolveCredentials_Missing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(APIKeyEnv, "")
	t.Setenv(EndpointEnv, "")

	_, err := ResolveCredentials(dir, "", filepath.Join(dir, "does-not-exist"))
	if err == nil {
		t.Fatal("Expected error when no source provides the key")
	}
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
	if !IsConfigurationError(err) {
		t.Errorf("error = %v, want ConfigurationError", err)
	}
}

func TestExecutableDir(t *testing.T) {
	if dir := ExecutableDir(); dir == "" {
		t.Error("ExecutableDir returned empty string for the test binary")
	}
}
