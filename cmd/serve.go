package cmd

import (
	"fmt"
	"os"

	"fhirmcp/internal/config"
	"fhirmcp/internal/tools"
	"fhirmcp/pkg/logging"

	"github.com/spf13/cobra"
)

// serveConfigPath specifies a custom configuration directory path.
// When set, config.yaml is loaded from this directory instead of the
// per-user location.
var serveConfigPath string

// serveDebug enables verbose logging regardless of the configured level.
var serveDebug bool

// serveCmd starts the MCP server over stdio. This is the command an MCP
// client configuration points at.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve FHIR tools over stdio using the Model Context Protocol",
	Long: `Starts the MCP server on stdin/stdout and blocks until the client
closes the stream.

stdout carries the protocol stream exclusively; all logging goes to
stderr. Configuration is read from config.yaml in the user config
directory (~/.config/fhirmcp), with FHIR_SERVER_URL, MATCHBOX_SERVER_URL,
FHIR_REQUEST_TIMEOUT and FHIRMCP_LOG_LEVEL environment overrides.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath := serveConfigPath
	if configPath == "" {
		defaultPath, err := config.GetDefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = defaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := logging.ParseLevel(cfg.Serve.LogLevel)
	if serveDebug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	logging.Info("serve", "fhirmcp %s starting, FHIR server %s", GetVersion(), cfg.FHIR.BaseURL)

	srv := tools.NewServer(cfg, GetVersion())
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("MCP server terminated: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}
