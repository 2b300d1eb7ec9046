// Package pipeline wires configuration to adapters and exposes one-shot
// entry points for each processing phase.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jianxion/highlightAI/internal/config"
	"github.com/jianxion/highlightAI/internal/logging"
	"github.com/jianxion/highlightAI/internal/ports"
	"github.com/jianxion/highlightAI/internal/ports/adapters/framegrab"
	"github.com/jianxion/highlightAI/internal/ports/adapters/localstore"
	"github.com/jianxion/highlightAI/internal/ports/adapters/overlay"
	"github.com/jianxion/highlightAI/internal/ports/adapters/speechapi"
	"github.com/jianxion/highlightAI/internal/ports/adapters/titleapi"
	"github.com/jianxion/highlightAI/internal/ports/adapters/transcodeapi"
	"github.com/jianxion/highlightAI/internal/ports/adapters/videostore"
	"github.com/jianxion/highlightAI/internal/ports/adapters/visionapi"
	"github.com/jianxion/highlightAI/internal/server"
	"github.com/jianxion/highlightAI/internal/usecase"
)

func Validate(cfg *config.Config) error {
	if cfg.Speech.BaseURL == "" {
		return errors.New("speech base URL is required")
	}
	if cfg.Vision.BaseURL == "" {
		return errors.New("vision base URL is required")
	}
	if cfg.Transcode.BaseURL == "" {
		return errors.New("transcode base URL is required")
	}
	if cfg.Title.BaseURL != "" {
		if err := titleapi.ValidateBaseURL(cfg.Title.BaseURL, nil); err != nil {
			return err
		}
	}
	return nil
}

// Build assembles the adapters and the usecase from configuration.
func Build(cfg *config.Config) (*usecase.Usecase, error) {
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	store, err := localstore.New(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	videos, err := videostore.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	deps := usecase.Deps{
		Speech:     speechapi.New(cfg.Speech.BaseURL, cfg.Speech.APIKey),
		Vision:     visionapi.New(cfg.Vision.BaseURL, cfg.Vision.APIKey),
		Transcoder: transcodeapi.New(cfg.Transcode.BaseURL, cfg.Transcode.APIKey),
		Store:      store,
		Videos:     videos,
		Titles:     titleapi.New(cfg.Title.APIKey, cfg.Title.Model, cfg.Title.BaseURL),
		Frames:     framegrab.New(cfg.Tools.FFmpeg, cfg.Tools.FFprobe),
		Overlay:    overlay.New(),
		Log:        logging.WithComponent("usecase"),
	}

	return usecase.New(deps, cfg.Storage.RawBucket, cfg.Storage.EditedBucket), nil
}

// RunAnalyze kicks off the analysis jobs for a freshly uploaded video.
func RunAnalyze(ctx context.Context, cfg *config.Config, videoID, key string, size int64) error {
	uc, err := Build(cfg)
	if err != nil {
		return err
	}
	return uc.Analyze(ctx, usecase.AnalyzeInput{
		VideoID:  videoID,
		Bucket:   cfg.Storage.RawBucket,
		Key:      key,
		FileSize: size,
	})
}

// RunConsolidate processes a speech job completion notification.
func RunConsolidate(ctx context.Context, cfg *config.Config, jobName, jobStatus string) (usecase.ConsolidateResult, error) {
	uc, err := Build(cfg)
	if err != nil {
		return usecase.ConsolidateResult{}, err
	}
	return uc.Consolidate(ctx, usecase.ConsolidateInput{
		JobName:   jobName,
		JobStatus: jobStatus,
	})
}

// RunFinalize processes a transcode completion notification.
func RunFinalize(ctx context.Context, cfg *config.Config, videoID, jobStatus, outputKey, errorMsg string) error {
	uc, err := Build(cfg)
	if err != nil {
		return err
	}
	return uc.Finalize(ctx, usecase.FinalizeInput{
		VideoID:   videoID,
		JobStatus: jobStatus,
		OutputKey: outputKey,
		ErrorMsg:  errorMsg,
	})
}

// RunServe builds the usecase and serves the webhook endpoints until ctx is
// cancelled.
func RunServe(ctx context.Context, cfg *config.Config) error {
	uc, err := Build(cfg)
	if err != nil {
		return err
	}
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := server.New(addr, uc, logging.WithComponent("server"))
	return srv.Run(ctx)
}

// ensure adapters implement ports
var _ ports.SpeechAnalyzer = (*speechapi.Adapter)(nil)
var _ ports.VisionAnalyzer = (*visionapi.Adapter)(nil)
var _ ports.Transcoder = (*transcodeapi.Adapter)(nil)
var _ ports.ObjectStore = (*localstore.Store)(nil)
var _ ports.VideoStore = (*videostore.Store)(nil)
var _ ports.TitleGenerator = (*titleapi.Adapter)(nil)
var _ ports.FrameSampler = (*framegrab.Adapter)(nil)
var _ ports.OverlayRenderer = (*overlay.Renderer)(nil)
