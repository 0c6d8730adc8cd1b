// If you are AI: This is the CLI entrypoint for framebusd. The root command
// and RunE/SilenceUsage wiring follow the teacher pack's
// cmd/magicschema/main.go; the daemon lifecycle (load config, start server,
// wait for shutdown signal) follows the teacher's own original main.go.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"framebus/internal/config"
	"framebus/internal/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "framebusd",
		Short:         "Shared-memory sensor-frame bus daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newServeCmd(), newWatchCmd(), newTopicsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a publisher and monitor server for every configured topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			shutdownHandler := server.NewShutdownHandler(srv, cmd.Context())

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(shutdownHandler.Context()); err != nil && err != http.ErrServerClosed {
					errCh <- err
					return
				}
				errCh <- nil
			}()

			if err := shutdownHandler.Wait(); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return <-errCh
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "configs/framebus.example.yaml", "path to configuration file")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var (
		ringLength  int
		concatenate bool
	)

	cmd := &cobra.Command{
		Use:   "watch <topic>",
		Short: "Subscribe to a topic and print frames as they arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchTopic(cmd.Context(), args[0], ringLength, concatenate)
		},
	}
	cmd.Flags().IntVar(&ringLength, "ring-length", 8, "subscriber local ring length")
	cmd.Flags().BoolVar(&concatenate, "concatenate", false, "print the stacked ring instead of the latest frame")
	return cmd
}

func newTopicsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List the topics declared in a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return printTopics(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "configs/framebus.example.yaml", "path to configuration file")
	return cmd
}
