package cmd

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/vidlinks/vidlinks/internal/appid"
	"github.com/vidlinks/vidlinks/internal/auth"
)

var keygenQuiet bool

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an API key for the links endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := auth.GenerateKey()
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		if keygenQuiet {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		}

		prefix := appid.EnvPrefix(GetAppIdentity())
		lines := []string{
			"API key",
			"",
			key,
			"",
			fmt.Sprintf("Set %sAPI_KEY=%s (or API_SECRET_KEY) before starting the server.", prefix, key),
			"",
		}
		lines = append(lines, auth.UsageInstructions()...)

		_, err = fmt.Fprint(cmd.OutOrStdout(), ascii.DrawBox(strings.Join(lines, "\n"), 0))
		return err
	},
}

func init() {
	keygenCmd.Flags().BoolVarP(&keygenQuiet, "quiet", "q", false, "Print only the key")
	rootCmd.AddCommand(keygenCmd)
}
