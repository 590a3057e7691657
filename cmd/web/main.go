package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/report-atlas/pkg/server"
	"github.com/de-tools/report-atlas/pkg/services/report"
)

var (
	cfgPath string
	dbPath  string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Serve rendered reports over HTTP",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "report.yaml", "Path to the report configuration")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Path to a DuckDB results database (overrides report.db)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	session, err := report.LoadSession(ctx, cfgPath, dbPath)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	defer session.Close()

	logger.Info().Msgf("Configuration found at `%s` successfully loaded.", cfgPath)
	for _, ws := range session.Renderer.WorksheetDefs() {
		logger.Info().Msgf("Worksheet: `%s`, Kind: `%s`", ws.ID, ws.Kind)
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		return errors.New("missing SERVER_HOST or SERVER_PORT in the environment")
	}

	api := server.NewWebAPI(server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Reports: session.Renderer,
			Logger:  logger,
		},
	})

	if err := api.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
