package main

import (
	"encoding/json"
	"fmt"
	"os"

	"order-tracker/internal/app"
	"order-tracker/internal/core/config"
	"order-tracker/internal/core/logger"

	"github.com/spf13/cobra"
)

var (
	phone  string
	order  string
	envDir string
)

var rootCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up an order by phone and order code",
	Long:  "Runs the same lookup as POST /order-lookup against the configured order store and prints the JSON result.",
	Example: "  lookup --phone 5512345678 --order ST-1001\n" +
		"  lookup --phone 5512345678 --order ST-1001 --env-dir ./deploy",
	SilenceUsage: true,
	RunE:         runLookup,
}

func init() {
	rootCmd.Flags().StringVar(&phone, "phone", "", "customer phone, any formatting")
	rootCmd.Flags().StringVar(&order, "order", "", "order code, e.g. ST-1001")
	rootCmd.Flags().StringVar(&envDir, "env-dir", ".", "directory holding the .env file")
	_ = rootCmd.MarkFlagRequired("phone")
	_ = rootCmd.MarkFlagRequired("order")
}

func runLookup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	lookup := app.NewLookup(cfg)
	defer lookup.Close()

	result, err := lookup.Service.Lookup(cmd.Context(), phone, order)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
