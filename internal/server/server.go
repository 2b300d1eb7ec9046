// Package server exposes the webhook surface that external job-completion
// notifications hit. Handlers stay thin: decode, call the usecase, map the
// error taxonomy onto status codes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jianxion/highlightAI/internal/usecase"
)

type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	uc         *usecase.Usecase
	log        zerolog.Logger
}

// Engine returns the server's gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func New(addr string, uc *usecase.Usecase, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  30 * time.Second,
		},
		uc:  uc,
		log: log,
	}

	engine.Use(gin.Recovery())
	engine.GET("/healthz", s.handleHealth)
	engine.POST("/webhooks/speech", s.handleSpeechWebhook)
	engine.POST("/webhooks/transcode", s.handleTranscodeWebhook)
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type speechNotification struct {
	JobName   string `json:"jobName" binding:"required"`
	JobStatus string `json:"jobStatus" binding:"required"`
}

func (s *Server) handleSpeechWebhook(c *gin.Context) {
	var n speechNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification: " + err.Error()})
		return
	}

	res, err := s.uc.Consolidate(c.Request.Context(), usecase.ConsolidateInput{
		JobName:   n.JobName,
		JobStatus: n.JobStatus,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"videoId":        res.VideoID,
			"transcodeJobId": res.TranscodeJobID,
			"keyMoments":     len(res.KeyMoments),
			"title":          res.Title,
		})
	case errors.Is(err, usecase.ErrNotReady):
		// The job is still running or the record is not there yet. The
		// notifier will retry, so this is not a failure.
		c.JSON(http.StatusOK, gin.H{"status": "not ready"})
	case errors.Is(err, usecase.ErrMalformedJobName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.Error().Err(err).Str("job_name", n.JobName).Msg("consolidation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type transcodeNotification struct {
	VideoID   string `json:"videoId" binding:"required"`
	JobStatus string `json:"jobStatus" binding:"required"`
	OutputKey string `json:"outputKey"`
	ErrorMsg  string `json:"errorMessage"`
}

func (s *Server) handleTranscodeWebhook(c *gin.Context) {
	var n transcodeNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification: " + err.Error()})
		return
	}

	err := s.uc.Finalize(c.Request.Context(), usecase.FinalizeInput{
		VideoID:   n.VideoID,
		JobStatus: n.JobStatus,
		OutputKey: n.OutputKey,
		ErrorMsg:  n.ErrorMsg,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, usecase.ErrNotReady):
		c.JSON(http.StatusOK, gin.H{"status": "not ready"})
	default:
		s.log.Error().Err(err).Str("video_id", n.VideoID).Msg("finalization failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
