package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/uploads"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// AssetReferences lists the upload URLs a table still points at.
type AssetReferences interface {
	AssetPaths(ctx context.Context) ([]string, error)
}

// UploadStore is the part of the uploads store the sweeper works on.
type UploadStore interface {
	List(kind uploads.Kind) ([]uploads.File, error)
	Remove(url string) error
}

// SweepConfig controls the orphan-upload sweep.
type SweepConfig struct {
	Enabled  bool
	Schedule string
	// Grace protects files written moments ago whose record is still
	// being committed.
	Grace time.Duration
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Scanned int
	Removed int
	Failed  int
}

// UploadSweeper periodically removes uploads that no author or book references.
type UploadSweeper struct {
	store  UploadStore
	refs   []AssetReferences
	config SweepConfig
	now    func() time.Time

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	sweepMu   sync.Mutex
}

// NewUploadSweeper creates a sweeper over store. Every source in refs
// contributes URLs that must be kept.
func NewUploadSweeper(store UploadStore, config SweepConfig, refs ...AssetReferences) *UploadSweeper {
	return &UploadSweeper{
		store:  store,
		refs:   refs,
		config: config,
		now:    time.Now,
		cron:   cron.New(cron.WithParser(parser)),
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// Start schedules the sweep if enabled. The scheduler stops when ctx is done.
func (s *UploadSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Info().Msg("upload sweep scheduler: disabled")
		return nil
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule upload sweep: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Info().
		Str("schedule", s.config.Schedule).
		Time("next_run", s.cron.Entry(entryID).Next).
		Msg("upload sweep scheduler: started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops accepting new runs and waits for a running sweep to finish.
func (s *UploadSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	log.Info().Msg("upload sweep scheduler: stopped")
}

// IsRunning returns whether the scheduler is active
func (s *UploadSweeper) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next sweep will occur, or nil when not scheduled.
func (s *UploadSweeper) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

func (s *UploadSweeper) runSweep(ctx context.Context) {
	result, err := s.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("upload sweep failed")
		return
	}
	log.Info().
		Int("scanned", result.Scanned).
		Int("removed", result.Removed).
		Int("failed", result.Failed).
		Msg("upload sweep finished")
}

// RunOnce removes every stored upload that is older than the grace period
// and not referenced by any record.
func (s *UploadSweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	var result SweepResult

	referenced := make(map[string]struct{})
	for _, ref := range s.refs {
		paths, err := ref.AssetPaths(ctx)
		if err != nil {
			return result, fmt.Errorf("load referenced uploads: %w", err)
		}
		for _, p := range paths {
			referenced[p] = struct{}{}
		}
	}

	cutoff := s.now().Add(-s.config.Grace)
	for _, kind := range []uploads.Kind{uploads.KindAuthor, uploads.KindBook} {
		files, err := s.store.List(kind)
		if err != nil {
			return result, err
		}
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			result.Scanned++
			if _, ok := referenced[file.URL]; ok {
				continue
			}
			if file.ModTime.After(cutoff) {
				continue
			}
			if err := s.store.Remove(file.URL); err != nil {
				log.Warn().Err(err).Str("url", file.URL).Msg("failed to remove orphaned upload")
				result.Failed++
				continue
			}
			result.Removed++
		}
	}

	return result, nil
}
