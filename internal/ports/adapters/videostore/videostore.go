// Package videostore persists video records in SQLite through GORM.
package videostore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jianxion/highlightAI/internal/types"
)

var ErrVideoNotFound = errors.New("video not found")

type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&types.VideoRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, videoID string) (*types.VideoRecord, error) {
	var rec types.VideoRecord
	err := s.db.WithContext(ctx).Where("video_id = ?", videoID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("getting video %s: %w", videoID, err)
	}
	return &rec, nil
}

func (s *Store) Create(ctx context.Context, rec *types.VideoRecord) error {
	if rec.VideoID == "" {
		return fmt.Errorf("videostore: video id is required")
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("creating video %s: %w", rec.VideoID, err)
	}
	return nil
}

// Update applies the set fields of upd to the record. Unset fields are left
// untouched so concurrent phases do not clobber each other's columns.
func (s *Store) Update(ctx context.Context, videoID string, upd types.VideoUpdate) error {
	updates := map[string]interface{}{}
	if upd.Status != nil {
		updates["status"] = *upd.Status
	}
	if upd.Phase != nil {
		updates["phase"] = *upd.Phase
	}
	if upd.Bucket != nil {
		updates["bucket"] = *upd.Bucket
	}
	if upd.Key != nil {
		updates["key"] = *upd.Key
	}
	if upd.UploadedSize != nil {
		updates["uploaded_size"] = *upd.UploadedSize
	}
	if upd.SpeechJobID != nil {
		updates["speech_job_id"] = *upd.SpeechJobID
	}
	if upd.VisionJobID != nil {
		updates["vision_job_id"] = *upd.VisionJobID
	}
	if upd.TranscodeJobID != nil {
		updates["transcode_job_id"] = *upd.TranscodeJobID
	}
	if upd.KeyMoments != nil {
		updates["key_moments"] = upd.KeyMoments
	}
	if upd.KeyMomentsCnt != nil {
		updates["key_moments_cnt"] = *upd.KeyMomentsCnt
	}
	if upd.Title != nil {
		updates["title"] = *upd.Title
	}
	if upd.OutputKey != nil {
		updates["output_key"] = *upd.OutputKey
	}
	if upd.Error != nil {
		updates["error"] = *upd.Error
	}
	if upd.StartedAt != nil {
		updates["started_at"] = upd.StartedAt
	}
	if upd.ConsolidatedAt != nil {
		updates["consolidated_at"] = upd.ConsolidatedAt
	}
	if upd.CompletedAt != nil {
		updates["completed_at"] = upd.CompletedAt
	}
	if len(updates) == 0 {
		return nil
	}

	res := s.db.WithContext(ctx).
		Model(&types.VideoRecord{}).
		Where("video_id = ?", videoID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating video %s: %w", videoID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVideoNotFound
	}
	return nil
}
