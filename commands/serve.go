package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/accparse/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parser over WebSocket JSON-RPC",
	Long: `Start an HTTP server with a small browser front end at / and a
WebSocket JSON-RPC endpoint at /ws offering parse, tokens, print and
dialects. The server stops on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides [serve] addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := appConfig.Serve.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := web.NewServer(
		web.WithLogger(logger),
		web.WithDialect(appConfig.Parser.Dialect),
		web.WithReadLimit(appConfig.Serve.ReadLimit),
		web.WithWriteTimeout(appConfig.Serve.WriteTimeout.Duration),
	)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	server := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		srv.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", "err", err)
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "accparse: serving on http://%s\n", ln.Addr())
	logger.Info("serving", "addr", ln.Addr().String(), "dialect", appConfig.Parser.Dialect)
	if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
