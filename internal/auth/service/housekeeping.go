package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

// HousekeepingService periodically purges expired refresh and temporary
// records from drivers that do not expire keys on their own.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one purge pass and returns how many records it removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, s.Interval)
	defer cancel()

	n, err := s.Store.DeleteExpired(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired records", "error", err)
		return 0
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted", n)
	return n
}
