package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/surgen/internal/surgen/config"
	"github.com/vaibhaw-/surgen/internal/surgen/dataset"
	"github.com/vaibhaw-/surgen/internal/surgen/runner"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the surgeries INSERT statement",
	RunE:  runGenerate,
}

var flagOutput string

func init() {
	generateCmd.Flags().StringVar(&flagOutput, "output", "", "output file (default stdout)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	// Override config with command line flags
	if flagOutput != "" {
		cfg.Output.Path = flagOutput
	}

	write := func(out io.Writer) error {
		_, err := runner.RunGenerate(cmd.Context(), cfg, dataset.Default(), out)
		return err
	}
	if cfg.Output.Path == "" {
		return write(cmd.OutOrStdout())
	}
	return writeFileAtomic(cfg.Output.Path, write)
}

// writeFileAtomic runs fn against a temp file next to path and renames it
// into place only when fn and the close both succeed. On failure path is
// left as it was.
func writeFileAtomic(path string, fn func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
