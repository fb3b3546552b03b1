package main

import (
	"bytes"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/dotedit/pkg/logging"
)

func newRenderCmd(a *app) *cobra.Command {
	var output string
	var tools []string

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render a document to SVG",
		Example: `  dotedit render graph.json > graph.svg
  dotedit render graph.json --tool Layout.Spring -o graph.svg`,
		Args: cobra.MaximumNArgs(1),
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

			for _, name := range tools {
				if err := ed.Layout(name); err != nil {
					return err
				}
			}

			var buf bytes.Buffer
			if err := ed.Render(&buf); err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), output, buf.Bytes()); err != nil {
				return err
			}
			logging.Debug("rendered", "document", path, "output", output, "bytes", buf.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringSliceVar(&tools, "tool", nil, "layout tools to run before rendering")
	return cmd
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
