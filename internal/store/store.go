// Package store keeps a small client-local sqlite database: an audit trail
// of submission attempts and a cache of station/gate reference data. It is
// never consulted to decide attendance state; the server stays authoritative.
package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"shiftmark/internal/model"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&model.SubmissionLog{}, &model.CachedStation{}, &model.CachedGate{}); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &Store{db: db}, nil
}

// LogSubmission appends one attempt outcome. Rows are append-only and never
// replayed; this is not an offline queue.
func (s *Store) LogSubmission(entry model.SubmissionLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("insert submission log: %w", err)
	}
	return nil
}

// History returns the most recent attempts, newest first.
func (s *Store) History(limit int) ([]model.SubmissionLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []model.SubmissionLog
	if err := s.db.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("query submission log: %w", err)
	}
	return logs, nil
}

// CacheReference replaces the cached station/gate lists with a fresh fetch.
func (s *Store) CacheReference(stations []model.Station, gates []model.Gate) error {
	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.CachedStation{}).Error; err != nil {
			return fmt.Errorf("clear cached stations: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&model.CachedGate{}).Error; err != nil {
			return fmt.Errorf("clear cached gates: %w", err)
		}
		for _, st := range stations {
			row := model.CachedStation{ID: st.ID, Name: st.Name, Latitude: st.Latitude, Longitude: st.Longitude, FetchedAt: now}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("cache station %d: %w", st.ID, err)
			}
		}
		for _, g := range gates {
			row := model.CachedGate{ID: g.ID, Name: g.Name, StationID: g.StationID, FetchedAt: now}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("cache gate %d: %w", g.ID, err)
			}
		}
		return nil
	})
}

// Stations returns the cached reference list (possibly stale).
func (s *Store) Stations() ([]model.Station, error) {
	var rows []model.CachedStation
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query cached stations: %w", err)
	}
	out := make([]model.Station, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Station{ID: r.ID, Name: r.Name, Latitude: r.Latitude, Longitude: r.Longitude})
	}
	return out, nil
}

func (s *Store) Gates() ([]model.Gate, error) {
	var rows []model.CachedGate
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query cached gates: %w", err)
	}
	out := make([]model.Gate, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Gate{ID: r.ID, Name: r.Name, StationID: r.StationID})
	}
	return out, nil
}
