package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/OpenTaberna/logkit"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "logkit",
		Short: "logkit pipeline CLI",
		Long:  "Inspect and exercise logkit configurations: validate config files and emit sample records under a preset.",
	}

	// validate
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a logkit config file (JSON or YAML)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				return fmt.Errorf("missing --config")
			}
			cfg, err := logkit.LoadConfigFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("ok: %s (fingerprint %s, %d handlers)\n", cfg.Name, cfg.Fingerprint(), len(cfg.Handlers))
			return nil
		},
	}
	validateCmd.Flags().String("config", "", "Path to config file")
	rootCmd.AddCommand(validateCmd)

	// demo
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Emit sample records under an environment preset",
		RunE: func(cmd *cobra.Command, args []string) error {
			envName, _ := cmd.Flags().GetString("env")
			name, _ := cmd.Flags().GetString("name")
			dir, _ := cmd.Flags().GetString("dir")

			env, err := logkit.ParseEnvironment(envName)
			if err != nil {
				return err
			}
			cfg, err := logkit.FromEnvironment(name, env, dir)
			if err != nil {
				return err
			}
			logkit.ApplyEnv(&cfg)
			logger, err := logkit.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			ctx := logkit.WithContext(context.Background(), logkit.Fields{"request_id": "demo-1"})
			logger.Debug(ctx, "demo debug record")
			logger.Info(ctx, "demo info record", logkit.Int("port", 8080))
			logger.Warning(ctx, "demo warning record", logkit.Str("password", "hunter2"))
			logger.Exception(ctx, errors.New("demo failure"), "demo error record")
			return logger.MeasureTime(ctx, "demo_operation", func(ctx context.Context) error {
				logger.Info(ctx, "inside measured scope")
				return nil
			})
		},
	}
	demoCmd.Flags().String("env", string(logkit.EnvDevelopment), "Preset: development|testing|staging|production")
	demoCmd.Flags().String("name", "demo", "Logger name")
	demoCmd.Flags().String("dir", "", "Directory for file handlers (default logs)")
	rootCmd.AddCommand(demoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
