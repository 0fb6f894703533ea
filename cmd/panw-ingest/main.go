// Command panw-ingest runs the AutoFocus export ingest input. Splunk
// invokes it on the input's schedule; it also runs from a shell for
// debugging, reading the session key from configuration instead of stdin.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tphakala/go-panw/autofocus"
	"github.com/tphakala/go-panw/ingest"
	"github.com/tphakala/go-panw/splunk"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	rootCmd := &cobra.Command{
		Use:           "panw-ingest",
		Short:         "Ingest Palo Alto Networks telemetry into Splunk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(exportCmd(logger))

	if err := rootCmd.Execute(); err != nil {
		// The input's exit status is how Splunk distinguishes a failed
		// run; log the cause and exit non-zero.
		logger.Error("run failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func exportCmd(logger *zap.Logger) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "autofocus-export",
		Short: "Sync an AutoFocus export list into a KV store collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(); err != nil {
				return err
			}
			if label == "" {
				label = viper.GetString("autofocus.label")
			}
			if label == "" {
				return fmt.Errorf("no export label configured")
			}

			sessionKey, err := resolveSessionKey()
			if err != nil {
				return err
			}

			splunkClient, err := splunk.NewClient(
				splunk.WithBaseURL(viper.GetString("splunk.base_url")),
				splunk.WithSessionKey(sessionKey),
				splunk.WithApp(viper.GetString("splunk.app")),
				splunk.WithInsecureSkipVerify(),
			)
			if err != nil {
				return err
			}

			// The AutoFocus API key lives in Splunk's credential store,
			// looked up explicitly by realm.
			cred, err := splunkClient.Credential(cmd.Context(), viper.GetString("autofocus.realm"), "")
			if err != nil {
				return err
			}

			afClient, err := autofocus.NewClient(
				autofocus.WithAPIKey(cred.Password),
			)
			if err != nil {
				return err
			}

			input := ingest.NewExportInput(ingest.ExportInputOptions{
				AutoFocus:  afClient,
				Collection: splunkClient.Collection(viper.GetString("splunk.collection")),
				Events:     ingest.NewEventWriter(os.Stdout),
				Logger:     logger,
				Metrics:    ingest.NewMetrics(prometheus.DefaultRegisterer),
			})

			result, err := input.Run(context.Background(), label)
			if err != nil {
				return err
			}

			logger.Info("export synced",
				zap.String("label", result.Label),
				zap.String("outcome", string(result.Outcome)),
				zap.Int("emitted", result.Emitted),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "AutoFocus export label (overrides config)")
	return cmd
}

func loadConfig() error {
	viper.SetConfigName("panw-ingest")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home := os.Getenv(ingest.EnvSplunkHome); home != "" {
		viper.AddConfigPath(home + "/etc/apps/panw/local")
	}

	viper.SetDefault("splunk.base_url", "https://localhost:8089")
	viper.SetDefault("splunk.app", "panw")
	viper.SetDefault("splunk.collection", "autofocus_export")
	viper.SetDefault("autofocus.realm", "autofocus")

	if err := viper.ReadInConfig(); err != nil {
		// Defaults cover a stock deployment; only a malformed file is fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// resolveSessionKey reads the key from stdin under splunkd, from the
// SPLUNK_SESSION_KEY environment variable otherwise.
func resolveSessionKey() (string, error) {
	if ingest.InsideSplunk() {
		key, err := ingest.ReadSessionKey(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading session key: %w", err)
		}
		return key, nil
	}
	return os.Getenv("SPLUNK_SESSION_KEY"), nil
}
