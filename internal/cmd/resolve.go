package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/extractor"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/output"
)

var (
	resolveShowURLs bool
	resolveTimeout  time.Duration
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <video-url>",
	Short: "Resolve a video URL into download links",
	Long: `Resolve a video URL into the same quality-ranked links the HTTP endpoint
returns: the best 2160p and 1080p MP4 streams and the best M4A and MP3/Opus
audio streams.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}

		cfg, err := currentConfig()
		if err != nil {
			return err
		}
		local := *cfg
		if resolveTimeout > 0 {
			local.Timeout.Function = resolveTimeout
		}

		videoURL := args[0]
		if !extractor.ValidateURL(videoURL) {
			observability.CLILogger.Warn("URL does not look like a supported video URL", zap.String("url", videoURL))
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		started := time.Now()
		result, err := buildService(&local).Resolve(ctx, videoURL)
		if err != nil {
			return err
		}
		observability.CLILogger.Debug("Resolved video",
			zap.String("title", result.Title),
			zap.Duration("elapsed", time.Since(started)))

		formatter := output.NewFormatter(format)
		if tf, ok := formatter.(*output.TableFormatter); ok {
			tf.ShowURLs = resolveShowURLs
		}
		rendered, err := formatter.FormatResult(result)
		if err != nil {
			return err
		}

		outPath, err := resolveOutPath(cmd, result.Title, format)
		if err != nil {
			return err
		}
		sink, err := openSink(cmd.OutOrStdout(), outPath)
		if err != nil {
			return err
		}
		defer sink.discard()

		if _, err := fmt.Fprintln(sink.writer, rendered); err != nil {
			return err
		}
		if err := sink.commit(); err != nil {
			return err
		}
		if sink.path != stdoutPath {
			observability.CLILogger.Info("Wrote output", zap.String("path", sink.path))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	addOutputFlags(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveShowURLs, "show-urls", false, "Include stream URLs in table output")
	resolveCmd.Flags().DurationVar(&resolveTimeout, "timeout", 0, "Override the per-attempt extraction timeout")
}
