package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/buildtrack/internal/certs"
	"github.com/Veraticus/buildtrack/internal/config"
	"github.com/Veraticus/buildtrack/internal/function"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the spreadsheet backend function over HTTP",
		Long: `Run the backend function that clients configured with remote.backend=function
call. Requests are answered from Google Sheets using the sheets.* credentials;
use --memory to serve an in-memory store instead. With --tls the server
generates and reuses a self-signed certificate covering localhost and
server.tls_hosts.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	cmd.Flags().Bool("memory", false, "serve an in-memory store")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed certificate from server.cert_dir")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	server := config.LoadServerConfig(viper.GetViper())
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		server.Addr = addr
	}

	var store sheets.Store
	if memory, _ := cmd.Flags().GetBool("memory"); memory {
		store = sheets.NewMemoryStore()
	} else {
		sheetsConfig, err := config.LoadSheetsConfig(viper.GetViper())
		if err != nil {
			return err
		}
		google, err := sheets.NewGoogleStore(ctx, *sheetsConfig, logger)
		if err != nil {
			return err
		}
		store = google
	}

	srv := &http.Server{
		Addr: server.Addr,
		Handler: function.NewHandler(store, function.Options{
			Logger:         logger,
			APIKey:         server.APIKey,
			AllowedOrigins: server.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	useTLS, _ := cmd.Flags().GetBool("tls")
	if useTLS {
		tlsConfig, err := certs.NewFileManager(server.CertDir, server.TLSHosts...).TLSConfig()
		if err != nil {
			return fmt.Errorf("failed to prepare certificate: %w", err)
		}
		srv.TLSConfig = tlsConfig
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving backend function", "addr", server.Addr, "tls", useTLS)
		if useTLS {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("Shutting down backend function")
	return srv.Shutdown(shutdownCtx)
}
