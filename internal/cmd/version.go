package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vidlinks/vidlinks/internal/output"
	"github.com/vidlinks/vidlinks/internal/server/handlers"
)

var (
	versionExtended bool
	versionFormat   string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information.

--extended adds commit, build date, Go, gofulmen, Crucible and extractor
versions. --output-format json|yaml prints the same document GET /version
serves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := handlers.CurrentVersion()
		out := cmd.OutOrStdout()

		switch versionFormat {
		case "", string(output.FormatTable):
		case string(output.FormatJSON):
			rendered, err := output.MarshalJSON(info)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, rendered)
			return err
		case string(output.FormatYAML):
			rendered, err := output.MarshalYAML(info)
			if err != nil {
				return err
			}
			_, err = io.WriteString(out, rendered)
			return err
		default:
			return fmt.Errorf("unsupported output format %q (want table|json|yaml)", versionFormat)
		}

		fmt.Fprintf(out, "%s %s\n", info.App.Name, info.App.Version)
		if !versionExtended {
			return nil
		}
		fmt.Fprintf(out, "Commit: %s\nBuilt: %s\nGo: %s\nPlatform: %s\n\n",
			info.App.Commit, info.App.BuildDate, info.App.GoVersion, info.Runtime.Platform)
		fmt.Fprintf(out, "Gofulmen: %s\nCrucible: %s\n", info.Dependencies.Gofulmen, info.Dependencies.Crucible)
		if info.Dependencies.Extractor != "" {
			fmt.Fprintf(out, "Extractor: %s\n", info.Dependencies.Extractor)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&versionExtended, "extended", "e", false, "Show build, runtime and dependency versions")
	versionCmd.Flags().StringVar(&versionFormat, "output-format", "", "Output format: table|json|yaml")
}
