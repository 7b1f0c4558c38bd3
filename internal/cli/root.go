package cli

import (
	"fmt"
	"os"

	"github.com/dshills/guard/internal/version"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitFailure    = 1
	ExitUsageError = 2
)

var rootCmd = &cobra.Command{
	Use:   "guard [target] [prompt]",
	Short: "Chunked AI code analysis CLI",
	Long: `Guard walks a project directory, packs its text files into size-bounded
chunks, sends each chunk to a chat-completions model for analysis and merges
the partial analyses into one markdown report saved under reviews/.

The instruction comes from a GUARD.md file in the current directory or in the
target directory; an explicit prompt is placed before it.`,
	Args:         cobra.MaximumNArgs(2),
	SilenceUsage: true,
	RunE:         runAnalyze,
}

// Run executes the root command with the process arguments and returns an
// exit code.
func Run() int {
	return run(os.Args[1:])
}

func run(args []string) int {
	exitCode = ExitSuccess
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print guard version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
	},
}

func init() {
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Version = version.Get().String()
	addAnalyzeFlags(rootCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
