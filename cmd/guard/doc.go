// Guard is a CLI that asks a chat-completions model to analyze a whole
// project directory.
//
// Text files are packed into size-bounded chunks, analyzed one after the
// other, and merged by a final synthesis call into a markdown report written
// under reviews/. Instructions come from a GUARD.md file, an explicit prompt,
// or both.
//
// Usage:
//
//	guard                               # analyze the current directory
//	guard ./service                     # analyze another directory
//	guard ./service "Look for races"    # with an explicit instruction
//	guard -l French ./service           # force the answer language
//	guard config init                   # write the default config file
//
// The API key is read from MISTRAL_API_KEY or from a .env file in the
// current directory or beside the executable.
package main
