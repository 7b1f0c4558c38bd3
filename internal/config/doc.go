// Package config loads and merges guard configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GUARD_MODEL, GUARD_LANGUAGE, GUARD_DELAY, etc.)
//  3. Config file ($XDG_CONFIG_HOME/guard/config.yaml)
//  4. Built-in defaults
//
// Credentials are resolved separately by [ResolveCredentials]: the
// MISTRAL_API_KEY and CODESTRAL_URL variables come from the process
// environment, then from .env files in the working directory and beside the
// executable.
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file, and
// [SetField] to update a single key.
package config
