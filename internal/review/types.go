package review

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a Run.
type Status string

const (
	StatusPending        Status = "pending"
	StatusCompletedEmpty Status = "completed-empty"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
)

// Run carries the state of one analysis from collection to the saved report.
type Run struct {
	ID string
	// Target is the directory as given by the user, used in the report.
	Target string
	// Root is the absolute directory walked. Target is used when empty.
	Root string
	// Prompt is the user-supplied instruction, empty when none was given.
	Prompt string
	// Instruction is the resolved base instruction sent with every chunk.
	Instruction string
	Language    string

	Chunks  []Chunk
	Results []string
	Final   string
	// Synthesized is true when Final came from the synthesis call.
	Synthesized bool
	ReportPath  string

	StartedAt time.Time
	Status    Status
}

// NewRun creates a pending run with a fresh ID.
func NewRun(target, prompt, instruction string) *Run {
	return &Run{
		ID:          uuid.NewString(),
		Target:      target,
		Prompt:      prompt,
		Instruction: instruction,
		StartedAt:   time.Now(),
		Status:      StatusPending,
	}
}

func (r *Run) root() string {
	if r.Root != "" {
		return r.Root
	}
	return r.Target
}
