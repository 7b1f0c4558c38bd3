package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/dshills/guard/internal/review"
	"github.com/fatih/color"
)

// MarkdownWriter renders the persisted report.
type MarkdownWriter struct {
	// Now stamps the report, time.Now when nil.
	Now func() time.Time
}

func (m *MarkdownWriter) Write(w io.Writer, run *review.Run) error {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	ew := &errWriter{w: w}
	ew.println("# Code Analysis Report")
	ew.printf("**Date**: %s\n", now().Format("02/01/2006 15:04:05"))
	ew.printf("**Target**: `%s`\n", run.Target)
	if run.Prompt != "" {
		ew.printf("**Instruction**: %s\n", run.Prompt)
	}
	ew.printf("\n---\n\n")
	ew.printf("%s", run.Final)
	return ew.err
}

// ReportWriter saves reports as report_{project}_{timestamp}.md files.
type ReportWriter struct {
	// Dir is the reviews directory. Relative paths are resolved against
	// BaseDir, or the current directory when BaseDir is empty.
	Dir     string
	BaseDir string
	now     func() time.Time
}

// NewReportWriter creates a ReportWriter for dir.
func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{Dir: dir, now: time.Now}
}

// Save writes the run's final result and returns the file path. The
// directory is created when missing.
func (r *ReportWriter) Save(run *review.Run) (string, error) {
	dir, err := r.dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reviews directory: %w", err)
	}

	now := r.clock()()
	path := filepath.Join(dir, ReportFileName(run.Target, now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	md := &MarkdownWriter{Now: func() time.Time { return now }}
	if err := md.Write(f, run); err != nil {
		f.Close()
		return "", fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report: %w", err)
	}
	return path, nil
}

func (r *ReportWriter) dir() (string, error) {
	dir := r.Dir
	if dir == "" {
		dir = "reviews"
	}
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	base := r.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		base = wd
	}
	return filepath.Join(base, dir), nil
}

func (r *ReportWriter) clock() func() time.Time {
	if r.now == nil {
		return time.Now
	}
	return r.now
}

// ReportFileName names the report of target written at t.
func ReportFileName(target string, t time.Time) string {
	project := target
	if abs, err := filepath.Abs(target); err == nil {
		project = abs
	}
	return fmt.Sprintf("report_%s_%s.md", filepath.Base(project), t.Format("20060102_150405"))
}

var (
	mdHeading = regexp.MustCompile(`(?m)^(#+ .*)$`)
	mdBold    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	mdCode    = regexp.MustCompile("`(.*?)`")
	mdBullet  = regexp.MustCompile(`(?m)^([ \t]*[•\-*] )`)

	mdHeadingColor = color.New(color.FgMagenta, color.Bold)
	mdBoldColor    = color.New(color.FgYellow, color.Bold)
	mdCodeColor    = color.New(color.FgCyan)
	mdBulletColor  = color.New(color.FgBlue)
)

// Colorize highlights headings, bold spans, inline code and bullet markers
// for terminal display. Delimiters of bold and code spans are removed. With
// colors disabled the text only loses those delimiters.
func Colorize(text string) string {
	text = mdHeading.ReplaceAllStringFunc(text, func(s string) string {
		return mdHeadingColor.Sprint(s)
	})
	text = mdBold.ReplaceAllStringFunc(text, func(s string) string {
		return mdBoldColor.Sprint(mdBold.FindStringSubmatch(s)[1])
	})
	text = mdCode.ReplaceAllStringFunc(text, func(s string) string {
		return mdCodeColor.Sprint(mdCode.FindStringSubmatch(s)[1])
	})
	text = mdBullet.ReplaceAllStringFunc(text, func(s string) string {
		return mdBulletColor.Sprint(s)
	})
	return text
}
