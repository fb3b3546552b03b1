package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ritzau/dotedit/pkg/layout"
	"github.com/ritzau/dotedit/pkg/logging"
)

func newLayoutCmd(a *app) *cobra.Command {
	var output string
	var selectAll bool

	cmd := &cobra.Command{
		Use:   "layout [document] [tool...]",
		Short: "Run layout tools on a document and save the result",
		Long: fmt.Sprintf(`Run layout tools, in order, on a document and write it back.

Tools: %s

Alignment tools work on the selected nodes; use --all to select every node.
Without tools, Layout.Spring is run.`, strings.Join(toolNames(), ", ")),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			tools := args[1:]
			if len(tools) == 0 {
				tools = []string{layout.Spring}
			}

			ed, err := a.openDocument(path)
			if err != nil {
				return err
			}
			defer ed.Close()

			if selectAll {
				for _, n := range ed.Graph().Nodes() {
					ed.Selection().Select(n)
				}
			}
			for _, name := range tools {
				if err := ed.Layout(name); err != nil {
					return err
				}
			}

			var buf bytes.Buffer
			if err := ed.Export(&buf); err != nil {
				return err
			}
			if output == "" {
				output = path
			}
			if err := writeOutput(cmd.OutOrStdout(), output, buf.Bytes()); err != nil {
				return err
			}
			logging.Info("layout written", "document", path, "tools", strings.Join(tools, ","), "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: overwrite the document)`)
	cmd.Flags().BoolVar(&selectAll, "all", false, "select every node before running the tools")
	return cmd
}

// toolNames lists the registered tools for help output.
func toolNames() []string {
	return layout.DefaultRegistry(layout.Context{}, layout.DefaultSpringOptions()).Names()
}
