package main

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ritzau/dotedit/pkg/output"
	"github.com/ritzau/dotedit/pkg/topology"
)

func newInfoCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info [document]",
		Short: "Report counts, components, cycles and unknown stencils",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.documentPath(args)
			if err != nil {
				return err
			}
			ed, err := a.openDocument(path)
			if err != nil {
				return err
			}
			defer ed.Close()

			report := topology.Analyze(ed.Graph(), ed.Stencils())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			title := ed.Header().Name
			if title == "" {
				title = filepath.Base(path)
			}
			output.PrintReport(cmd.OutOrStdout(), title, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
