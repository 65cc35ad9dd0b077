package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/surgen/internal/surgen/config"
	"github.com/vaibhaw-/surgen/internal/surgen/dataset"
	"github.com/vaibhaw-/surgen/internal/surgen/runner"
	"go.uber.org/multierr"
)

var verifyFlagInput string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a generated surgeries file for consistency",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		var in io.Reader
		name := "stdin"
		if verifyFlagInput == "" {
			in = cmd.InOrStdin()
		} else {
			f, err := os.Open(verifyFlagInput)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()
			in = f
			name = verifyFlagInput
		}

		rep, err := runner.RunVerify(cmd.Context(), cfg, dataset.Default(), in, name)
		if rep.Violations > 0 {
			for _, v := range multierr.Errors(err) {
				fmt.Fprintln(cmd.ErrOrStderr(), v)
			}
			return fmt.Errorf("%s: %d violations", name, rep.Violations)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d surgeries over %d days verified (%s .. %s)\n",
			name, rep.Rows, rep.Days, rep.FirstProtocol, rep.LastProtocol)
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyFlagInput, "input", "", "generated SQL file (default stdin)")
}
