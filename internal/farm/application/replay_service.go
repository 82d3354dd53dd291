package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ReplayResult summarises one replay run.
type ReplayResult struct {
	Attempted int
	Replayed  int
	Failed    int
	Skipped   int
}

// ReplayService re-sends journalled lines to the point store.
type ReplayService interface {
	Replay(ctx context.Context, cmd ReplayCommand) (ReplayResult, error)
}

// ReplayCommand selects which journalled failures are re-sent.
type ReplayCommand struct {
	Limit  int
	DryRun bool
	// Remove deletes an entry from the journal once its lines were written.
	Remove bool
}

// NewReplayService constructs the replay use-case.
func NewReplayService(journal FailedWriteJournal, store PointStore, logger logrus.FieldLogger) ReplayService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &replayService{journal: journal, store: store, logger: logger}
}

type replayService struct {
	journal FailedWriteJournal
	store   PointStore
	logger  logrus.FieldLogger
}

func (s *replayService) Replay(ctx context.Context, cmd ReplayCommand) (ReplayResult, error) {
	var result ReplayResult
	entries, err := s.journal.Recent(ctx, cmd.Limit)
	if err != nil {
		return result, fmt.Errorf("listing failed writes: %w", err)
	}

	for _, entry := range entries {
		log := s.logger.WithFields(logrus.Fields{"id": entry.ID, "date": entry.Date, "type": entry.SurveyType})
		if len(entry.Lines) == 0 {
			result.Skipped++
			log.Warn("journal entry has no lines")
			continue
		}
		result.Attempted++
		if cmd.DryRun {
			log.Infof("would replay %d lines", len(entry.Lines))
			continue
		}

		if err := s.store.Write(ctx, entry.Lines); err != nil {
			result.Failed++
			log.WithError(err).Error("replay failed")
			continue
		}
		result.Replayed++
		log.Infof("replayed %d lines", len(entry.Lines))

		if cmd.Remove {
			if err := s.journal.Delete(ctx, entry.ID); err != nil {
				log.WithError(err).Warn("replayed entry could not be removed")
			}
		}
	}
	return result, nil
}
