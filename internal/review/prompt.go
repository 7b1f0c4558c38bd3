package review

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = "You are a code expert. Analyze the provided files and answer in %s. Be concise and precise."

const synthesisSystemPrompt = "You are a lead developer. Your goal is to synthesize several partial code analyses into one coherent global report. Answer in %s."

// synthesisHeader opens the context sent with the synthesis call.
const synthesisHeader = "Here are the partial analyses received previously:\n\n"

// AnalysisSystemPrompt returns the system message for a chunk analysis.
func AnalysisSystemPrompt(language string) string {
	return fmt.Sprintf(analysisSystemPrompt, orDefaultLanguage(language))
}

// AnalysisUserPrompt wraps a chunk and its instruction.
func AnalysisUserPrompt(chunk, instruction string) string {
	return fmt.Sprintf("Here is a part of the project files:\n%s\n\nINSTRUCTION: %s", chunk, instruction)
}

// ChunkInstruction appends the part marker to the base instruction.
// index is 0-based.
func ChunkInstruction(instruction string, index, total int) string {
	return fmt.Sprintf("%s (This is part %d/%d of the code).", instruction, index+1, total)
}

// SynthesisSystemPrompt returns the system message for the synthesis call.
func SynthesisSystemPrompt(language string) string {
	return fmt.Sprintf(synthesisSystemPrompt, orDefaultLanguage(language))
}

// BuildSynthesisContext labels each partial analysis with its 1-based
// position, in input order.
func BuildSynthesisContext(results []string) string {
	var b strings.Builder
	b.WriteString(synthesisHeader)
	for i, r := range results {
		fmt.Fprintf(&b, "--- PART %d ---\n%s\n\n", i+1, r)
	}
	return b.String()
}

// SynthesisUserPrompt returns the user message for the synthesis call.
func SynthesisUserPrompt(results []string, instruction string) string {
	return BuildSynthesisContext(results) +
		fmt.Sprintf("\n\nFINAL TASK: %s\nProduce a global synthesis, eliminate redundancy and structure the answer.", instruction)
}

func orDefaultLanguage(language string) string {
	if strings.TrimSpace(language) == "" {
		return "English"
	}
	return language
}
