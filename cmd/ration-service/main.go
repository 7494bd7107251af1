package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhmu-100/RationService/internal/config"
	"github.com/zhmu-100/RationService/rationservice"
)

var envFile string

func newRootCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diet HTTP API",
		RunE:  func(cmd *cobra.Command, args []string) error { return rationservice.Run() },
	}
	tableStoreCmd := &cobra.Command{
		Use:   "tablestore",
		Short: "Serve the table store protocol over sqlite or postgres",
		RunE:  func(cmd *cobra.Command, args []string) error { return rationservice.RunTableStore() },
	}

	root := &cobra.Command{
		Use:           "ration-service",
		Short:         "Diet tracking service: foods, vitamins, minerals and meals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return nil
			}
			return config.LoadDotEnv(envFile)
		},
		RunE: serveCmd.RunE,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Extra .env file loaded before the environment is read")
	root.AddCommand(serveCmd, tableStoreCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("ration-service exited with error")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
