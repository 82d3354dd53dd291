package application

import (
	"context"
	"time"

	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
)

// PointStore abstracts the time-series database.
type PointStore interface {
	// Write stores the given line-protocol lines in one blocking call.
	Write(ctx context.Context, lines []string) error
	// CountRecent counts records for the given survey date written within window, up to limit.
	CountRecent(ctx context.Context, date string, window time.Duration, limit int) (int, error)
	// Rejections lists points the store refused within window, newest first, up to limit.
	Rejections(ctx context.Context, window time.Duration, limit int) ([]domain.Rejection, error)
}

// ImageStore abstracts the hosted image service.
type ImageStore interface {
	// Upload stores a data-URI encoded image under publicID and returns its public URL.
	Upload(ctx context.Context, dataURI, publicID string) (string, error)
}

// ImageShrinker reduces a base64 image payload before upload.
type ImageShrinker interface {
	Shrink(payload string) (string, error)
}

// FailedWriteJournal keeps submissions whose write could not be confirmed.
type FailedWriteJournal interface {
	Record(ctx context.Context, entry domain.FailedWrite) error
	Recent(ctx context.Context, limit int) ([]domain.FailedWrite, error)
	Delete(ctx context.Context, id string) error
}

// SaveResponsesCommand is one survey submission as received from the client.
type SaveResponsesCommand struct {
	Date        string
	SurveyType  string
	Language    string
	Responses   []domain.Response
	HealthScore *float64
	Timestamp   string
}

// SaveResult describes a verified write.
type SaveResult struct {
	RecordsWritten int
	Lines          []string
}

// SubmissionService validates, encodes, writes and verifies survey submissions.
type SubmissionService interface {
	Save(ctx context.Context, cmd SaveResponsesCommand) (*SaveResult, error)
	Rejections(ctx context.Context) ([]domain.Rejection, error)
}

// UploadImageCommand is an inline image posted by the client.
type UploadImageCommand struct {
	Image      string
	QuestionID string
	Timestamp  string
}

// ImageService relays photos to the image store.
type ImageService interface {
	Upload(ctx context.Context, cmd UploadImageCommand) (string, error)
}

// FailedWriteQueryService exposes journalled failures to operators.
type FailedWriteQueryService interface {
	Recent(ctx context.Context, limit int) ([]domain.FailedWrite, error)
}

// NewFailedWriteQueryService wraps a journal for read access.
func NewFailedWriteQueryService(journal FailedWriteJournal) FailedWriteQueryService {
	return &failedWriteQueryService{journal: journal}
}

type failedWriteQueryService struct {
	journal FailedWriteJournal
}

func (s *failedWriteQueryService) Recent(ctx context.Context, limit int) ([]domain.FailedWrite, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return s.journal.Recent(ctx, limit)
}
