package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vidlinks/vidlinks/internal/output"
)

const stdoutPath = "-"

// outputSink is where a rendered result goes. File sinks write to a temp
// file beside the target and only rename it into place on commit, so a
// failed run never leaves a truncated file behind.
type outputSink struct {
	writer io.Writer
	path   string
	tmp    *os.File
}

// commit publishes the written output. Stdout sinks have nothing to do.
func (s *outputSink) commit() error {
	if s.tmp == nil {
		return nil
	}
	tmp := s.tmp
	s.tmp = nil
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("publish output: %w", err)
	}
	return nil
}

// discard drops uncommitted output. Safe after commit.
func (s *outputSink) discard() {
	if s.tmp == nil {
		return
	}
	_ = s.tmp.Close()
	_ = os.Remove(s.tmp.Name())
	s.tmp = nil
}

func openSink(stdout io.Writer, path string) (*outputSink, error) {
	target := strings.TrimSpace(path)
	if target == "" || target == stdoutPath {
		return &outputSink{writer: stdout, path: stdoutPath}, nil
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &outputSink{writer: tmp, path: target, tmp: tmp}, nil
}

var unsafeFilenameRun = regexp.MustCompile(`[^a-z0-9._-]+`)

// sanitizeFilename lowercases a video title into a portable file stem.
func sanitizeFilename(value string) string {
	stem := unsafeFilenameRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "-")
	if stem = strings.Trim(stem, "-."); stem == "" {
		return "output"
	}
	return stem
}

func resolveOutputFormat(cmd *cobra.Command) (output.Format, error) {
	value, err := cmd.Flags().GetString("output-format")
	if err != nil {
		return "", err
	}
	return output.ParseFormat(value)
}

// resolveOutPath turns --out or --out-dir into one target path. With
// --out-dir the file is named after stem and the format's extension.
func resolveOutPath(cmd *cobra.Command, stem string, format output.Format) (string, error) {
	outPath, _ := cmd.Flags().GetString("out")
	outDir, _ := cmd.Flags().GetString("out-dir")
	outPath, outDir = strings.TrimSpace(outPath), strings.TrimSpace(outDir)

	switch {
	case outPath != "" && outDir != "":
		return "", fmt.Errorf("--out and --out-dir are mutually exclusive")
	case outDir == "":
		return outPath, nil
	}

	abs, err := filepath.Abs(outDir)
	if err != nil {
		abs = outDir
	}
	return filepath.Join(abs, sanitizeFilename(stem)+"."+format.Extension()), nil
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("output-format", string(output.FormatTable), "Output format: "+output.Names())
	cmd.Flags().String("out", "", "Write output to a file (default stdout)")
	cmd.Flags().String("out-dir", "", "Write output to a directory, named after the video title")
}
