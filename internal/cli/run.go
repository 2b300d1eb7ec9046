package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jianxion/highlightAI/internal/config"
	"github.com/jianxion/highlightAI/internal/logging"
	"github.com/jianxion/highlightAI/internal/pipeline"
)

const phaseTimeout = 15 * time.Minute

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <video-id>",
		Short: "Start transcription and label detection for an uploaded video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			key, _ := cmd.Flags().GetString("key")
			size, _ := cmd.Flags().GetInt64("size")
			if key == "" {
				key = "uploads/" + args[0] + ".mp4"
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), phaseTimeout)
			defer cancel()
			return pipeline.RunAnalyze(ctx, cfg, args[0], key, size)
		},
	}
	cmd.Flags().String("key", "", "Object key of the uploaded video")
	cmd.Flags().Int64("size", 0, "Uploaded file size in bytes")
	return cmd
}

func newConsolidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consolidate <job-name>",
		Short: "Select key moments and submit the transcode job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), phaseTimeout)
			defer cancel()

			res, err := pipeline.RunConsolidate(ctx, cfg, args[0], "COMPLETED")
			if err != nil {
				return err
			}
			logger := logging.WithComponent("cli")
			logger.Info().
				Str("video_id", res.VideoID).
				Str("transcode_job_id", res.TranscodeJobID).
				Int("key_moments", len(res.KeyMoments)).
				Str("title", res.Title).
				Msg("consolidation complete")
			return nil
		},
	}
}

func newFinalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize <video-id>",
		Short: "Record the outcome of a finished transcode job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			status, _ := cmd.Flags().GetString("status")
			outputKey, _ := cmd.Flags().GetString("output-key")
			errorMsg, _ := cmd.Flags().GetString("error")

			ctx, cancel := context.WithTimeout(cmd.Context(), phaseTimeout)
			defer cancel()
			return pipeline.RunFinalize(ctx, cfg, args[0], status, outputKey, errorMsg)
		},
	}
	cmd.Flags().String("status", "COMPLETE", "Transcode job status")
	cmd.Flags().String("output-key", "", "Object key of the rendered video")
	cmd.Flags().String("error", "", "Transcode error message, if any")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the job-completion webhook endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return pipeline.RunServe(ctx, cfg)
		},
	}
}
