package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ritzau/dotedit/pkg/editor"
	"github.com/ritzau/dotedit/pkg/logging"
	"github.com/ritzau/dotedit/pkg/watcher"
	"github.com/ritzau/dotedit/pkg/web"
)

func newServeCmd(a *app) *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "serve [document]",
		Short: "Serve the editor API for a document",
		Long: `Serve one in-memory document over HTTP. Graph and selection changes are
streamed from /api/subscribe/graph and /api/subscribe/selection.

With --watch the document file is reloaded whenever it changes on disk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path, _ := a.documentPath(args)

			ed, err := a.newEditor()
			if err != nil {
				return err
			}
			defer ed.Close()

			if path != "" {
				switch err := importFile(ed, path); {
				case errors.Is(err, fs.ErrNotExist):
					logging.Info("document does not exist yet, starting empty", "path", path)
				case err != nil:
					return err
				default:
					logging.Info("document loaded", "path", path,
						"nodes", ed.Graph().NodeCount(), "edges", ed.Graph().EdgeCount())
				}
			}

			server := web.NewServer(ed)
			defer server.Close()

			if a.cfg.Watch {
				if path == "" {
					return errors.New("--watch needs a document")
				}
				go func() {
					err := watcher.Watch(ctx, path, watcher.Options{}, func(p string) error {
						return server.Do(func(ed *editor.Editor) error { return importFile(ed, p) })
					})
					if err != nil {
						logging.Error("watching stopped", "path", path, "error", err)
					}
				}()
			}

			if open {
				go openBrowser(fmt.Sprintf("http://localhost:%d/api/render.svg", a.cfg.Port))
			}
			return server.Start(ctx, a.cfg.Port)
		},
	}

	cmd.Flags().Int("port", 8080, "port for the HTTP server")
	cmd.Flags().Bool("watch", false, "reload the document when its file changes")
	cmd.Flags().BoolVar(&open, "open", false, "open the rendered diagram in a browser")
	return cmd
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser", "platform", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
