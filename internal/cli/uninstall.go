package cli

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dshills/guard/internal/config"
	"github.com/dshills/guard/internal/output"
)

const installScript = "install.sh"

// executableDir locates install.sh and the fallback .env file.
var executableDir = config.ExecutableDir

// runUninstall delegates to install.sh --uninstall beside the executable and
// returns its exit code.
func runUninstall(console *output.Console) int {
	dir := executableDir()
	script := filepath.Join(dir, installScript)
	if info, err := os.Stat(script); dir == "" || err != nil || info.IsDir() {
		console.Error("Install script not found for uninstallation.")
		return ExitFailure
	}

	cmd := exec.Command("/bin/bash", script, "--uninstall")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		console.Error("FATAL ERROR: " + err.Error())
		return ExitFailure
	}
	return ExitSuccess
}
