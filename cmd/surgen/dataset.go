package main

import (
	"github.com/spf13/cobra"

	"github.com/vaibhaw-/surgen/internal/surgen/dataset"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Print the built-in lookup tables as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds := dataset.Default()
		if err := ds.Validate(); err != nil {
			return err
		}
		return ds.WriteYAML(cmd.OutOrStdout())
	},
}
