package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dshills/guard/internal/review"
	"github.com/fatih/color"
)

const (
	barWidth       = 20
	ruleWidth      = 40
	maxListedFiles = 10
	truncatedFiles = 8
)

var (
	headerColor  = color.New(color.FgMagenta, color.Bold)
	stepColor    = color.New(color.FgBlue, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgCyan)
	frameColor   = color.New(color.FgBlue)
	bold         = color.New(color.Bold).SprintFunc()
)

// Console prints the interactive run output.
type Console struct {
	out     io.Writer
	errOut  io.Writer
	tty     bool
	verbose bool
	spinner *Spinner

	// detailLines counts the lines of the current part block, cleared once
	// the part is done.
	detailLines int
}

var _ review.Progress = (*Console)(nil)

// NewConsole creates a Console. tty enables the spinner and line clearing;
// verbose lists every file of every part.
func NewConsole(out, errOut io.Writer, tty, verbose bool) *Console {
	return &Console{
		out:     out,
		errOut:  errOut,
		tty:     tty,
		verbose: verbose,
		spinner: NewSpinner(out, tty),
	}
}

// NewStdConsole creates a Console on stdout and stderr.
func NewStdConsole(verbose bool) *Console {
	return NewConsole(os.Stdout, os.Stderr, IsTerminal(os.Stdout), verbose)
}

// Header prints a framed title.
func (c *Console) Header(msg string) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(c.out, "\n%s\n%s\n%s\n\n", headerColor.Sprint(rule), headerColor.Sprint(" "+msg+" "), headerColor.Sprint(rule))
}

func (c *Console) Step(step, msg string) {
	fmt.Fprintf(c.out, "%s %s\n", stepColor.Sprintf("[%s]", step), msg)
}

func (c *Console) Success(msg string) {
	fmt.Fprintln(c.out, successColor.Sprint("✔ "+msg))
}

func (c *Console) Warning(msg string) {
	fmt.Fprintln(c.out, warnColor.Sprint("⚠ "+msg))
}

// Error prints to the error stream.
func (c *Console) Error(msg string) {
	fmt.Fprintln(c.errOut, errorColor.Sprint("✖ "+msg))
}

func (c *Console) Info(msg string) {
	fmt.Fprintln(c.out, infoColor.Sprint("ℹ "+msg))
}

// Busy starts the spinner.
func (c *Console) Busy(message string) func() {
	return c.spinner.Start(message)
}

// ScanProgress updates the running spinner with the scanned file count.
func (c *Console) ScanProgress(scanned int) {
	c.spinner.SetMessage(fmt.Sprintf("Scanning files... (%d files)", scanned))
}

func (c *Console) Empty() {
	c.Warning("No relevant text file found or empty directory.")
}

func (c *Console) Packed(chunks, maxBytes int) {
	c.Success(fmt.Sprintf("Project split into %s part(s) (approx. %.0f KiB/part).", bold(chunks), float64(maxBytes)/1024))
}

// ChunkStarted prints the part block: header with progress bar, size and
// the member files.
func (c *Console) ChunkStarted(chunk review.Chunk, total int) {
	ew := &errWriter{w: c.out}
	bar := progressBar(chunk.Index+1, total)
	edge := frameColor.Sprint("│")

	ew.printf("\n%s %s\n", frameColor.Sprint("┌──"), frameColor.Sprintf("%s [%s]", bold(fmt.Sprintf("Part %d/%d", chunk.Index+1, total)), bar))
	ew.printf("%s Size: %s\n", edge, kib(chunk.Size()))
	ew.printf("%s Files analyzed:\n", edge)
	lines := 4

	files := chunk.Files
	more := 0
	if !c.verbose && len(files) > maxListedFiles {
		more = len(files) - truncatedFiles
		files = files[:truncatedFiles]
	}
	for _, f := range files {
		ew.printf("%s   • %s\n", edge, f)
		lines++
	}
	if more > 0 {
		ew.printf("%s   ... (+%d more files, use --verbose to see all)\n", edge, more)
		lines++
	}
	c.detailLines = lines
}

// ChunkDone replaces the part block with a one-line summary on a terminal.
func (c *Console) ChunkDone(chunk review.Chunk, total int, elapsed time.Duration) {
	if c.tty {
		fmt.Fprint(c.out, strings.Repeat("\033[F\033[K", c.detailLines))
	}
	c.detailLines = 0
	fmt.Fprintf(c.out, "%s %s [%s] %s %s\n",
		successColor.Sprint("✔"),
		bold(fmt.Sprintf("Part %d/%d", chunk.Index+1, total)),
		progressBar(chunk.Index+1, total),
		infoColor.Sprintf("(%s)", kib(chunk.Size())),
		successColor.Sprintf("Success (%.1fs)", elapsed.Seconds()),
	)
}

// Result prints the final text with markdown highlighting.
func (c *Console) Result(text string, synthesized bool) {
	if synthesized {
		fmt.Fprint(c.out, "\n")
		c.Header("SYNTHESIZED RESULT")
		fmt.Fprintln(c.out, Colorize(text))
		fmt.Fprint(c.out, "\n")
		return
	}
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(c.out, "\n%s\n\n%s\n\n%s\n\n", rule, Colorize(text), rule)
}

func (c *Console) Saved(path string) {
	c.Success("Report saved to: " + bold(path))
}

func progressBar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = done * barWidth / total
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func kib(n int) string {
	return fmt.Sprintf("%.1f KiB", float64(n)/1024)
}
