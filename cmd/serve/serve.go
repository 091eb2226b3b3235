// Package serve runs the HTTP API
package serve

import (
	"context"
	"errors"
	"time"

	"fjacquet/extracto-ofx/cmd/root"
	"fjacquet/extracto-ofx/internal/api"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion HTTP API",
	Long: `Serve the conversion pipeline over HTTP.

Routes:
  GET  /api/health
  GET  /api/profiles
  POST /api/convert/:source   raw body or multipart field "file", returns OFX
  POST /api/preview/:source   returns the column preview as JSON

Example:
  extracto-ofx serve --addr :8080`,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr from the configuration)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	listen := addr
	if listen == "" {
		listen = root.GetConfig().Server.Addr
	}

	srv := api.NewServer(root.GetContainer())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(listen) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		root.Log.Info("Shutting down HTTP API")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	}
}
