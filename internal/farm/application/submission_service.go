package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
	"github.com/sirupsen/logrus"
)

const (
	defaultVerifyWindow    = time.Minute
	defaultRejectionWindow = time.Hour
	rejectionSampleSize    = 10
	rejectionFeedWindow    = 24 * time.Hour
	rejectionFeedLimit     = 100
	journalTimeout         = 5 * time.Second
)

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// SubmissionServiceConfig defines the dependencies of the submission service.
type SubmissionServiceConfig struct {
	Registry        *domain.Registry
	Store           PointStore
	Journal         FailedWriteJournal
	Logger          logrus.FieldLogger
	Location        *time.Location
	VerifyWindow    time.Duration
	RejectionWindow time.Duration
}

// NewSubmissionService constructs the submission use-case.
func NewSubmissionService(cfg SubmissionServiceConfig) SubmissionService {
	s := &submissionService{
		registry:        cfg.Registry,
		store:           cfg.Store,
		journal:         cfg.Journal,
		logger:          cfg.Logger,
		location:        cfg.Location,
		verifyWindow:    cfg.VerifyWindow,
		rejectionWindow: cfg.RejectionWindow,
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.verifyWindow <= 0 {
		s.verifyWindow = defaultVerifyWindow
	}
	if s.rejectionWindow <= 0 {
		s.rejectionWindow = defaultRejectionWindow
	}
	return s
}

type submissionService struct {
	registry        *domain.Registry
	store           PointStore
	journal         FailedWriteJournal
	logger          logrus.FieldLogger
	location        *time.Location
	verifyWindow    time.Duration
	rejectionWindow time.Duration
}

func (s *submissionService) Save(ctx context.Context, cmd SaveResponsesCommand) (*SaveResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"date":        cmd.Date,
		"type":        cmd.SurveyType,
		"language":    cmd.Language,
		"responses":   len(cmd.Responses),
		"server_date": time.Now().In(s.location).Format("2006-01-02"),
	})

	if len(cmd.Responses) == 0 {
		return nil, newError(KindMalformedRequest, "No responses provided", nil)
	}
	if strings.TrimSpace(cmd.SurveyType) == "" {
		return nil, newError(KindMalformedRequest, "question_type is missing or invalid", nil)
	}
	if strings.TrimSpace(cmd.Date) == "" {
		return nil, newError(KindMalformedRequest, "date is missing", nil)
	}

	timestamp, err := parseTimestamp(cmd.Timestamp)
	if err != nil {
		return nil, newError(KindMalformedRequest, fmt.Sprintf("Invalid timestamp format: %s", cmd.Timestamp), err)
	}

	result, err := domain.ValidateResponses(s.registry.Questions(cmd.SurveyType), cmd.Responses)
	if len(result.Unrecognized) > 0 {
		log.WithField("questions", result.Unrecognized).Warn("some received questions don't match the expected list")
	}
	if result.Truncated > 0 {
		log.WithField("dropped", result.Truncated).Warn("more responses than expected questions")
	}
	if len(result.Empty) > 0 {
		log.WithField("questions", result.Empty).Debug("skipping responses without meaningful data")
	}
	switch {
	case errors.Is(err, domain.ErrUnknownSurveyType):
		return nil, newError(KindUnrecognizedSurveyType, fmt.Sprintf("Unknown survey type: %s", cmd.SurveyType), err)
	case errors.Is(err, domain.ErrNoResponses):
		return nil, newError(KindMalformedRequest, "No responses provided", err)
	case errors.Is(err, domain.ErrNoValidResponses):
		return nil, newError(KindEmptyAfterFiltering, "No valid responses to save", err)
	case err != nil:
		return nil, err
	}

	sub := domain.Submission{
		Date:        cmd.Date,
		SurveyType:  cmd.SurveyType,
		Language:    cmd.Language,
		Responses:   result.Valid,
		HealthScore: cmd.HealthScore,
		Timestamp:   timestamp,
	}
	records, err := domain.EncodeSubmission(sub, result.Valid)
	if err != nil {
		return nil, fmt.Errorf("encoding submission: %w", err)
	}
	lines := domain.Lines(records)
	for _, line := range lines {
		log.WithField("line", line).Debug("generated line")
	}
	log.Infof("prepared %d valid data points", len(lines))

	if err := s.store.Write(ctx, lines); err != nil {
		appErr := newError(KindUpstreamWriteFailure, fmt.Sprintf("Failed to write to InfluxDB: %v", err), err)
		s.recordFailure(ctx, sub, lines, appErr)
		return nil, appErr
	}
	log.Infof("wrote %d records", len(lines))

	if err := s.verify(ctx, log, cmd.Date, len(lines)); err != nil {
		s.recordFailure(ctx, sub, lines, err)
		return nil, err
	}

	return &SaveResult{RecordsWritten: len(lines), Lines: lines}, nil
}

// verify checks that the store can see the freshly written records. When it
// cannot, the store's rejection feed is consulted for an explanation.
func (s *submissionService) verify(ctx context.Context, log logrus.FieldLogger, date string, written int) *Error {
	found, err := s.store.CountRecent(ctx, date, s.verifyWindow, written)
	if err != nil {
		return newError(KindUpstreamWriteFailure, fmt.Sprintf("Failed to write to InfluxDB: verification query failed: %v", err), err)
	}
	if found > 0 {
		log.Infof("verified %d records", found)
		return nil
	}

	log.Warn("verification failed: no records found after write")
	rejections, err := s.store.Rejections(ctx, s.rejectionWindow, rejectionSampleSize)
	if err != nil {
		log.WithError(err).Error("rejection lookup failed")
	}
	if len(rejections) > 0 {
		details := make([]string, 0, len(rejections))
		for _, rejection := range rejections {
			details = append(details, rejection.Error)
		}
		log.WithField("rejections", details).Error("write rejected by store")
		return newError(KindWriteRejected, "Write rejected: "+strings.Join(details, "; "), nil)
	}
	return newError(KindWriteUnverified, "Write succeeded but data not found", nil)
}

func (s *submissionService) recordFailure(ctx context.Context, sub domain.Submission, lines []string, cause *Error) {
	if s.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()

	entry := domain.FailedWrite{
		SurveyType: sub.SurveyType,
		Date:       sub.Date,
		Kind:       string(cause.Kind),
		Reason:     cause.Message,
		Lines:      append([]string(nil), lines...),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.WithError(err).Error("failed to journal unconfirmed write")
	}
}

func (s *submissionService) Rejections(ctx context.Context) ([]domain.Rejection, error) {
	return s.store.Rejections(ctx, rejectionFeedWindow, rejectionFeedLimit)
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("timestamp is empty")
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
