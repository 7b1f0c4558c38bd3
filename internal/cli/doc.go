// Package cli wires together the Cobra command tree for the guard binary.
//
// The root command takes an optional target directory and an optional
// free-form instruction, resolves credentials and configuration, and runs
// the review engine. The config and version subcommands manage the YAML
// configuration file and print build information. Run maps the outcome to
// the process exit code.
package cli
