package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidlinks/vidlinks/internal/config"
	"github.com/vidlinks/vidlinks/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}
		cfg, err := currentConfig()
		if err != nil {
			return err
		}
		redacted := cfg.Redacted().Settings()

		var rendered string
		switch format {
		case output.FormatJSON:
			rendered, err = output.MarshalJSON(redacted)
			if err != nil {
				return err
			}
		case output.FormatYAML:
			rendered, err = output.MarshalYAML(redacted)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported output format for config show: %s", format)
		}

		out := cmd.OutOrStdout()
		if used := viper.ConfigFileUsed(); used != "" {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "# source: %s\n", used)
		}
		_, err = fmt.Fprintln(out, rendered)
		if err != nil {
			return err
		}

		for _, w := range cfg.Warnings() {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the default config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if identity := GetAppIdentity(); identity != nil {
			name = identity.ConfigName
		}
		path := config.DefaultConfigPath(name)
		if path == "" {
			return fmt.Errorf("could not resolve config directory")
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

func init() {
	configShowCmd.Flags().String("output-format", string(output.FormatYAML), "Output format: yaml|json")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
