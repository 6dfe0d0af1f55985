// -----------------------------------------------------------------------
// Retention Scheduler - time-boxed artifact cleanup
// -----------------------------------------------------------------------

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
)

// Service implements interfaces.SchedulerService. A cron sweep catches
// artifacts whose in-process timers were lost to a restart; direct
// scheduling handles the common case without waiting for the sweep.
type Service struct {
	objects   interfaces.ObjectStorage
	retention interfaces.RetentionStorage
	schedule  string
	cron      *cron.Cron
	logger    arbor.ILogger
}

var _ interfaces.SchedulerService = (*Service)(nil)

// NewService creates the retention scheduler. schedule is a standard
// five-field cron expression for the sweep cadence.
func NewService(objects interfaces.ObjectStorage, retention interfaces.RetentionStorage, schedule string, logger arbor.ILogger) *Service {
	return &Service{
		objects:   objects,
		retention: retention,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start registers and starts the cleanup sweep
func (s *Service) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()

	s.logger.Info().
		Str("schedule", s.schedule).
		Msg("Retention scheduler started")
	return nil
}

// Stop stops the sweep; an in-flight run completes first
func (s *Service) Stop() error {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Retention scheduler stopped")
	return nil
}

// ScheduleDeletion registers an artifact for deletion at expiresAt. An
// already-expired artifact (negative delay) is deleted immediately
// rather than failing.
func (s *Service) ScheduleDeletion(ctx context.Context, artifactKey string, expiresAt time.Time) error {
	now := time.Now()
	rec := &models.RetentionRecord{
		ArtifactID: artifactKey,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
	}
	if err := s.retention.SaveRetention(ctx, rec); err != nil {
		return fmt.Errorf("failed to record retention: %w", err)
	}

	delay := time.Until(expiresAt)
	if delay <= 0 {
		s.deleteArtifact(ctx, artifactKey)
		return nil
	}

	time.AfterFunc(delay, func() {
		s.deleteArtifact(context.Background(), artifactKey)
	})
	return nil
}

// sweep deletes every artifact whose retention has lapsed
func (s *Service) sweep() {
	ctx := context.Background()
	expired, err := s.retention.ListExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("Retention sweep query failed")
		return
	}
	if len(expired) == 0 {
		return
	}

	s.logger.Debug().
		Int("expired", len(expired)).
		Msg("Retention sweep running")
	for _, rec := range expired {
		s.deleteArtifact(ctx, rec.ArtifactID)
	}
}

// deleteArtifact removes the object first, then its retention record.
// If the object delete fails the record stays and the next sweep
// retries.
func (s *Service) deleteArtifact(ctx context.Context, artifactKey string) {
	if err := s.objects.Delete(ctx, artifactKey); err != nil {
		s.logger.Warn().
			Err(err).
			Str("artifact", artifactKey).
			Msg("Failed to delete expired artifact")
		return
	}
	if err := s.retention.DeleteRetention(ctx, artifactKey); err != nil {
		s.logger.Warn().
			Err(err).
			Str("artifact", artifactKey).
			Msg("Failed to clear retention record")
		return
	}
	s.logger.Info().
		Str("artifact", artifactKey).
		Msg("Expired artifact deleted")
}
