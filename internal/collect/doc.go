// Package collect walks a project tree and reads the text files that are
// worth sending for analysis.
//
// Ignored directories (by exact name, plus every dot-directory) are pruned
// before descending. Dot-files, ignored extensions, lockfiles, symlinks and
// other non-regular files are never read. Contents are decoded as UTF-8 with
// invalid sequences replaced, trimmed, and dropped when empty or when they
// contain a NUL byte. Per-file failures are logged and skipped; they never
// abort the walk.
package collect
