package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/subosito/gotenv"
)

const (
	// APIKeyEnv holds the bearer token for the remote endpoint.
	APIKeyEnv = "MISTRAL_API_KEY"
	// EndpointEnv optionally overrides the remote endpoint URL.
	EndpointEnv = "CODESTRAL_URL"
	// DotEnvFile is the key=value file searched next to the invocation and
	// next to the executable.
	DotEnvFile = ".env"
)

// ErrMissingAPIKey is wrapped by the ConfigurationError returned when no
// source provides the token.
var ErrMissingAPIKey = errors.New(APIKeyEnv + " not found")

// Credentials holds the resolved access token and optional endpoint override.
type Credentials struct {
	APIKey string
	// Endpoint is empty unless CODESTRAL_URL was set somewhere.
	Endpoint string
	// Source names where the key came from: "environment" or a .env path.
	Source string
}

// ResolveCredentials looks up the API key and endpoint override. The process
// environment wins; otherwise .env files in dirs are read in order and
// scanning stops at the first file providing the key. For each variable the
// first file that sets it wins.
func ResolveCredentials(dirs ...string) (Credentials, error) {
	var creds Credentials
	fileVars := map[string]string{}
	keySource := ""

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, DotEnvFile)
		env, err := readDotEnv(path)
		if err != nil {
			continue
		}
		for k, v := range env {
			if _, seen := fileVars[k]; !seen {
				fileVars[k] = v
			}
		}
		if env[APIKeyEnv] != "" {
			keySource = path
			break
		}
	}

	if v := os.Getenv(APIKeyEnv); v != "" {
		creds.APIKey = v
		creds.Source = "environment"
	} else if v := fileVars[APIKeyEnv]; v != "" {
		creds.APIKey = v
		creds.Source = keySource
	}

	if v := os.Getenv(EndpointEnv); v != "" {
		creds.Endpoint = v
	} else {
		creds.Endpoint = fileVars[EndpointEnv]
	}

	if creds.APIKey == "" {
		return creds, &ConfigurationError{Reason: "missing credential", Err: ErrMissingAPIKey}
	}
	return creds, nil
}

// ExecutableDir returns the directory holding the running binary with
// symlinks resolved, or "" when it cannot be determined.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

func readDotEnv(path string) (gotenv.Env, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, errors.New(path + " is not a regular file")
	}
	return gotenv.Read(path)
}
