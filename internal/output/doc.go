// Package output renders everything the user sees and the report file.
//
// [Console] prints the colored step, success, warning, error and info lines,
// the per-part progress block and the final result, and implements
// review.Progress. [Spinner] is the activity indicator shown during blocking
// calls; it only animates when stdout is a terminal. [Colorize] highlights
// markdown for the terminal and [ReportWriter] persists the final result as
// a markdown file under the reviews directory.
package output
