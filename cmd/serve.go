package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"voicecode/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		agent, err := buildAgent(cfg, logger)
		if err != nil {
			return err
		}
		srv, err := server.New(agent, server.Options{
			WorkspaceRoot: cfg.WorkspaceRoot,
			Timeout:       cfg.Timeout(),
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		listen := cfg.ServerAddr
		if serveAddr != "" {
			listen = serveAddr
		}
		logger.Info("starting web server", "addr", listen, "workspace_root", cfg.WorkspaceRoot, "provider", cfg.LLM.Provider)
		return http.ListenAndServe(listen, srv.Routes())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "http listen address (overrides config.server_addr)")
	rootCmd.AddCommand(serveCmd)
}
