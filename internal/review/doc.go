// Package review drives a chunked code analysis run.
//
// Collected files are packed into size-bounded chunks (chunker.go) without
// ever splitting a file. Each chunk is analyzed sequentially with a fixed
// pause between calls; when more than one chunk was produced the partial
// analyses are merged by a final synthesis call. The run state lives in an
// explicit Run value threaded through every stage (engine.go).
//
// Instruction resolution (instruction.go) combines the project guidance file,
// an optional user prompt and an optional language directive into the base
// instruction sent with every chunk.
package review
