package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/dotedit/pkg/config"
	"github.com/ritzau/dotedit/pkg/editor"
	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/layout"
	"github.com/ritzau/dotedit/pkg/logging"
	"github.com/ritzau/dotedit/pkg/stencil"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "dotedit",
		Short:         "Edit, lay out and render node-link diagrams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	// Defaults here are for --help only; config.Load owns the real ones and
	// only flags that were set override them.
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./"+config.DefaultFile+" when present)")
	pf.String("verbosity", "info", "log level: trace, debug, info, warn or error")
	pf.Bool("log-json", false, "log as JSON instead of compact text")
	pf.Float64("viewport-width", 800, "width of the area layouts fit into")
	pf.Float64("viewport-height", 600, "height of the area layouts fit into")
	pf.Int("layout-iterations", 20, "spring embedder iterations")
	pf.Float64("layout-nodesep", 20, "extra spring length between node outlines")
	pf.String("stencils-node", "circle", "stencil for new nodes")
	pf.String("stencils-edge", "line", "stencil for new edges")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newLayoutCmd(a))
	root.AddCommand(newInfoCmd(a))
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags(), a.configPath)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.Verbosity)
	if err != nil {
		return err
	}
	logging.SetLevel(level)
	logging.SetJSONOutput(cfg.Log.JSON)
	a.cfg = cfg
	logging.Debug("configuration loaded", "document", cfg.Document, "port", cfg.Port, "watch", cfg.Watch)
	return nil
}

// newEditor builds an empty editor measuring labels with the Go font.
func (a *app) newEditor() (*editor.Editor, error) {
	m, err := stencil.NewFontMeasurer(stencil.DefaultFontSize)
	if err != nil {
		return nil, err
	}
	return editor.New(stencil.Default(m), editor.Config{
		Viewport: geometry.Size{Width: a.cfg.Viewport.Width, Height: a.cfg.Viewport.Height},
		Spring: layout.SpringOptions{
			Iterations: a.cfg.Layout.Iterations,
			NodeSep:    a.cfg.Layout.NodeSep,
		},
		NodeStencil: a.cfg.Stencils.Node,
		EdgeStencil: a.cfg.Stencils.Edge,
	})
}

// documentPath prefers the positional argument over the configured document.
func (a *app) documentPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if a.cfg.Document != "" {
		return a.cfg.Document, nil
	}
	return "", errors.New("no document given")
}

// openDocument creates an editor holding the document at path.
func (a *app) openDocument(path string) (*editor.Editor, error) {
	ed, err := a.newEditor()
	if err != nil {
		return nil, err
	}
	if err := importFile(ed, path); err != nil {
		ed.Close()
		return nil, err
	}
	return ed, nil
}

func importFile(ed *editor.Editor, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := ed.Import(f, true); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
