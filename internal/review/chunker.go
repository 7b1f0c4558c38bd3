package review

import (
	"fmt"
	"strings"

	"github.com/dshills/guard/internal/collect"
)

// DefaultMaxChunkBytes is the chunk budget used when none is configured.
const DefaultMaxChunkBytes = 200 * 1024

// Chunk is a size-bounded group of whole files sent in one analysis call.
type Chunk struct {
	Index int
	Text  string
	Files []string
}

// Size returns the UTF-8 byte length of the chunk text.
func (c Chunk) Size() int { return len(c.Text) }

// FormatEntry renders a file the way it appears inside a chunk.
func FormatEntry(path, content string) string {
	return fmt.Sprintf("\n--- FILE: %s ---\n%s\n", path, content)
}

// Pack groups entries into chunks of at most maxBytes, keeping input order.
// A chunk is sealed before an entry that would overflow it, unless the chunk
// is still empty: a file larger than maxBytes gets a chunk of its own and is
// never split. maxBytes <= 0 selects DefaultMaxChunkBytes.
func Pack(entries []collect.FileEntry, maxBytes int) []Chunk {
	if len(entries) == 0 {
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxChunkBytes
	}

	var chunks []Chunk
	var current strings.Builder
	var currentFiles []string

	flush := func() {
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  current.String(),
			Files: currentFiles,
		})
		current.Reset()
		currentFiles = nil
	}

	for _, e := range entries {
		entry := FormatEntry(e.Path, e.Content)
		if current.Len() > 0 && current.Len()+len(entry) > maxBytes {
			flush()
		}
		current.WriteString(entry)
		currentFiles = append(currentFiles, e.Path)
	}
	if current.Len() > 0 {
		flush()
	}

	return chunks
}
