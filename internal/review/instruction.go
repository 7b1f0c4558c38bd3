package review

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultInstruction is used when no guidance file is found.
const DefaultInstruction = "Perform a global analysis of the code and look for bugs."

// InstructionSource tells where the base instruction came from.
type InstructionSource string

const (
	SourceDefault InstructionSource = "default"
	SourceCwd     InstructionSource = "cwd"
	SourceTarget  InstructionSource = "target"
)

// InstructionOptions are the inputs of ResolveInstruction.
type InstructionOptions struct {
	// GuidanceFile is the file name looked up, GUARD.md when empty.
	GuidanceFile string
	// WorkDir is the invocation directory, the process cwd when empty.
	WorkDir string
	Target  string
	Prompt  string
	// Language, when set, appends a directive forcing the answer language.
	Language string
}

// Instruction is the resolved base instruction.
type Instruction struct {
	Text   string
	Source InstructionSource
	// GuidancePath is the file that supplied the guidance, if any.
	GuidancePath string
	// GuidanceLen is the length of the trimmed guidance text.
	GuidanceLen int
}

// ResolveInstruction builds the base instruction. The guidance file in the
// working directory wins over the one in the target directory; without
// either the default instruction is used. A user prompt is placed before the
// guidance and a language directive after everything.
func ResolveInstruction(opts InstructionOptions) (Instruction, error) {
	name := opts.GuidanceFile
	if name == "" {
		name = "GUARD.md"
	}
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Instruction{}, fmt.Errorf("getting working directory: %w", err)
		}
		workDir = wd
	}

	inst := Instruction{Text: DefaultInstruction, Source: SourceDefault}

	candidates := []struct {
		path   string
		source InstructionSource
	}{
		{filepath.Join(workDir, name), SourceCwd},
	}
	if opts.Target != "" {
		abs, err := filepath.Abs(opts.Target)
		if err != nil {
			return Instruction{}, fmt.Errorf("resolving target: %w", err)
		}
		candidates = append(candidates, struct {
			path   string
			source InstructionSource
		}{filepath.Join(abs, name), SourceTarget})
	}

	for _, c := range candidates {
		info, err := os.Stat(c.path)
		if err != nil || info.IsDir() {
			continue
		}
		data, err := os.ReadFile(c.path)
		if err != nil {
			return Instruction{}, fmt.Errorf("reading %s: %w", c.path, err)
		}
		inst.Text = strings.TrimSpace(string(data))
		inst.Source = c.source
		inst.GuidancePath = c.path
		inst.GuidanceLen = len(inst.Text)
		break
	}

	if opts.Prompt != "" {
		inst.Text = fmt.Sprintf("%s\n\n--- RULES TO FOLLOW (%s) ---\n%s", opts.Prompt, name, inst.Text)
	}
	if opts.Language != "" {
		inst.Text += fmt.Sprintf("\n\nIMPORTANT: the final answer MUST be written in %s.", opts.Language)
	}

	return inst, nil
}
