package output

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dshills/guard/internal/review"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func chunkWithFiles(n int) review.Chunk {
	c := review.Chunk{Index: 1, Text: strings.Repeat("x", 2048)}
	for i := 0; i < n; i++ {
		c.Files = append(c.Files, fmt.Sprintf("pkg/file%02d.go", i))
	}
	return c
}

func TestConsole_Lines(t *testing.T) {
	noColor(t)
	var out, errOut bytes.Buffer
	c := NewConsole(&out, &errOut, false, false)

	c.Step("1/4", "Scanning")
	c.Success("done")
	c.Warning("careful")
	c.Info("note")
	c.Error("FATAL ERROR: boom")

	assert.Equal(t, "[1/4] Scanning\n✔ done\n⚠ careful\nℹ note\n", out.String())
	assert.Equal(t, "✖ FATAL ERROR: boom\n", errOut.String())
}

func TestConsole_Header(t *testing.T) {
	noColor(t)
	var out bytes.Buffer
	NewConsole(&out, &out, false, false).Header("GUARD")

	rule := strings.Repeat("=", 40)
	assert.Equal(t, "\n"+rule+"\n GUARD \n"+rule+"\n\n", out.String())
}

func TestConsole_ChunkStarted_TruncatesFileList(t *testing.T) {
	noColor(t)
	var out bytes.Buffer
	c := NewConsole(&out, &out, false, false)

	c.ChunkStarted(chunkWithFiles(15), 3)
	s := out.String()

	assert.Contains(t, s, "Part 2/3")
	assert.Contains(t, s, "Size: 2.0 KiB")
	assert.Contains(t, s, "pkg/file07.go")
	assert.NotContains(t, s, "pkg/file08.go")
	assert.Contains(t, s, "... (+7 more files, use --verbose to see all)")
	assert.Equal(t, 4+8+1, c.detailLines)
}

func TestConsole_ChunkStarted_ListsAll(t *testing.T) {
	noColor(t)
	tests := []struct {
		name    string
		files   int
		verbose bool
	}{
		{"ten files", 10, false},
		{"verbose", 15, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			NewConsole(&out, &out, false, tt.verbose).ChunkStarted(chunkWithFiles(tt.files), 1)
			s := out.String()
			assert.Contains(t, s, fmt.Sprintf("pkg/file%02d.go", tt.files-1))
			assert.NotContains(t, s, "more files")
		})
	}
}

func TestConsole_ChunkDone(t *testing.T) {
	noColor(t)

	var plain bytes.Buffer
	c := NewConsole(&plain, &plain, false, false)
	c.ChunkStarted(chunkWithFiles(2), 2)
	plain.Reset()
	c.ChunkDone(chunkWithFiles(2), 2, 1500*time.Millisecond)
	assert.Equal(t, "✔ Part 2/2 ["+strings.Repeat("█", 20)+"] (2.0 KiB) Success (1.5s)\n", plain.String())

	var tty bytes.Buffer
	c = NewConsole(&tty, &tty, true, false)
	c.ChunkStarted(chunkWithFiles(2), 2)
	tty.Reset()
	c.ChunkDone(chunkWithFiles(2), 2, time.Second)
	assert.True(t, strings.HasPrefix(tty.String(), strings.Repeat("\033[F\033[K", 6)))
}

func TestConsole_Result(t *testing.T) {
	noColor(t)

	var out bytes.Buffer
	c := NewConsole(&out, &out, false, false)
	c.Result("single **answer**", false)
	assert.Contains(t, out.String(), "single answer")
	assert.NotContains(t, out.String(), "SYNTHESIZED RESULT")

	out.Reset()
	c.Result("merged", true)
	assert.Contains(t, out.String(), " SYNTHESIZED RESULT ")
	assert.Contains(t, out.String(), "merged")
}

func TestConsole_BusyWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, false, false)
	stop := c.Busy("working")
	c.ScanProgress(50)
	stop()
	assert.Empty(t, out.String())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", 10)+strings.Repeat("░", 10), progressBar(1, 2))
	assert.Equal(t, strings.Repeat("░", 20), progressBar(0, 3))
	assert.Equal(t, strings.Repeat("█", 6)+strings.Repeat("░", 14), progressBar(1, 3))
}
