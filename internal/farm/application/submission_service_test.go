package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
	"github.com/sirupsen/logrus"
)

type fakePointStore struct {
	writeErr      error
	count         int
	countErr      error
	rejections    []domain.Rejection
	rejectionsErr error

	written       []string
	countDate     string
	countLimit    int
	rejectionArgs []time.Duration
}

func (f *fakePointStore) Write(_ context.Context, lines []string) error {
	f.written = append(f.written, lines...)
	return f.writeErr
}

func (f *fakePointStore) CountRecent(_ context.Context, date string, _ time.Duration, limit int) (int, error) {
	f.countDate = date
	f.countLimit = limit
	return f.count, f.countErr
}

func (f *fakePointStore) Rejections(_ context.Context, window time.Duration, _ int) ([]domain.Rejection, error) {
	f.rejectionArgs = append(f.rejectionArgs, window)
	return f.rejections, f.rejectionsErr
}

type fakeJournal struct {
	entries []domain.FailedWrite
}

func (f *fakeJournal) Record(_ context.Context, entry domain.FailedWrite) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeJournal) Recent(_ context.Context, limit int) ([]domain.FailedWrite, error) {
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeJournal) Delete(_ context.Context, id string) error {
	for i, entry := range f.entries {
		if entry.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testRegistry() *domain.Registry {
	return domain.NewRegistry(1, []domain.SurveyType{
		{Name: "Day 1 - Watering & Health", Questions: []string{
			"Did you water the plants today?",
			"Did it rain today on your field?",
		}},
	})
}

func newTestService(store PointStore, journal FailedWriteJournal) SubmissionService {
	return NewSubmissionService(SubmissionServiceConfig{
		Registry: testRegistry(),
		Store:    store,
		Journal:  journal,
		Logger:   quietLogger(),
	})
}

func scenarioCommand() SaveResponsesCommand {
	score := 80.0
	return SaveResponsesCommand{
		Date:       "2024-01-01",
		SurveyType: "Day 1 - Watering & Health",
		Responses: []domain.Response{
			{Question: "Did you water the plants today?", Answer: domain.Answer{Text: "yes"}},
		},
		HealthScore: &score,
		Timestamp:   "2024-01-01T10:00:00+05:30",
	}
}

func TestSaveWritesAndVerifies(t *testing.T) {
	store := &fakePointStore{count: 1}
	svc := newTestService(store, nil)

	result, err := svc.Save(context.Background(), scenarioCommand())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RecordsWritten != 1 {
		t.Errorf("expected 1 record, got %d", result.RecordsWritten)
	}
	if len(store.written) != 1 {
		t.Fatalf("expected 1 line written, got %d", len(store.written))
	}
	if !strings.Contains(store.written[0], "language=hindi,question_id=q1 ") {
		t.Errorf("unexpected line %q", store.written[0])
	}
	if !strings.HasSuffix(store.written[0], ",crop_health_score=80 1704083400000000000") {
		t.Errorf("unexpected line %q", store.written[0])
	}
	if store.countDate != "2024-01-01" || store.countLimit != 1 {
		t.Errorf("verification queried date=%q limit=%d", store.countDate, store.countLimit)
	}
	if len(store.rejectionArgs) != 0 {
		t.Error("rejections must not be queried after a verified write")
	}
}

func TestSaveRequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SaveResponsesCommand)
		kind    ErrorKind
		message string
	}{
		{"no responses", func(c *SaveResponsesCommand) { c.Responses = nil }, KindMalformedRequest, "No responses provided"},
		{"no type", func(c *SaveResponsesCommand) { c.SurveyType = "" }, KindMalformedRequest, "question_type is missing or invalid"},
		{"no date", func(c *SaveResponsesCommand) { c.Date = " " }, KindMalformedRequest, "date is missing"},
		{"bad timestamp", func(c *SaveResponsesCommand) { c.Timestamp = "yesterday" }, KindMalformedRequest, "Invalid timestamp format: yesterday"},
		{"unknown type", func(c *SaveResponsesCommand) { c.SurveyType = "Monthly" }, KindUnrecognizedSurveyType, "Unknown survey type: Monthly"},
		{"unrecognized question", func(c *SaveResponsesCommand) {
			c.Responses = []domain.Response{{Question: "Did you sing today?", Answer: domain.Answer{Text: "yes"}}}
		}, KindEmptyAfterFiltering, "No valid responses to save"},
		{"empty answer", func(c *SaveResponsesCommand) {
			c.Responses = []domain.Response{{Question: "Did it rain today on your field?"}}
		}, KindEmptyAfterFiltering, "No valid responses to save"},
	}

	for _, test := range tests {
		store := &fakePointStore{count: 1}
		cmd := scenarioCommand()
		test.mutate(&cmd)

		_, err := newTestService(store, nil).Save(context.Background(), cmd)
		var appErr *Error
		if !errors.As(err, &appErr) {
			t.Errorf("%s: expected *Error, got %v", test.name, err)
			continue
		}
		if appErr.Kind != test.kind || appErr.Message != test.message {
			t.Errorf("%s: got kind=%s message=%q", test.name, appErr.Kind, appErr.Message)
		}
		if !appErr.IsClientError() {
			t.Errorf("%s: expected a client error", test.name)
		}
		if len(store.written) != 0 {
			t.Errorf("%s: nothing must be written", test.name)
		}
	}
}

func TestSaveWriteFailure(t *testing.T) {
	store := &fakePointStore{writeErr: errors.New("unauthorized access")}
	journal := &fakeJournal{}

	_, err := newTestService(store, journal).Save(context.Background(), scenarioCommand())
	if KindOf(err) != KindUpstreamWriteFailure {
		t.Fatalf("expected write failure, got %v", err)
	}
	if err.Error() != "Failed to write to InfluxDB: unauthorized access" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if len(journal.entries) != 1 || journal.entries[0].Kind != string(KindUpstreamWriteFailure) {
		t.Fatalf("expected one journalled failure, got %+v", journal.entries)
	}
	if len(journal.entries[0].Lines) != 1 {
		t.Errorf("journal entry must carry the encoded lines")
	}
}

func TestSaveWriteRejected(t *testing.T) {
	store := &fakePointStore{
		count: 0,
		rejections: []domain.Rejection{
			{Error: "field type conflict"},
			{Error: "schema mismatch"},
		},
	}
	journal := &fakeJournal{}

	_, err := newTestService(store, journal).Save(context.Background(), scenarioCommand())
	if KindOf(err) != KindWriteRejected {
		t.Fatalf("expected write rejected, got %v", err)
	}
	if err.Error() != "Write rejected: field type conflict; schema mismatch" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if len(store.rejectionArgs) != 1 || store.rejectionArgs[0] != time.Hour {
		t.Errorf("unexpected rejection lookups %v", store.rejectionArgs)
	}
	if len(journal.entries) != 1 {
		t.Errorf("expected rejected write to be journalled")
	}
}

func TestSaveWriteUnverified(t *testing.T) {
	store := &fakePointStore{count: 0, rejectionsErr: errors.New("bucket not found")}

	_, err := newTestService(store, nil).Save(context.Background(), scenarioCommand())
	if KindOf(err) != KindWriteUnverified {
		t.Fatalf("expected unverified write, got %v", err)
	}
	if err.Error() != "Write succeeded but data not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestSaveVerificationQueryFailure(t *testing.T) {
	store := &fakePointStore{countErr: errors.New("timeout")}

	_, err := newTestService(store, nil).Save(context.Background(), scenarioCommand())
	if KindOf(err) != KindUpstreamWriteFailure {
		t.Fatalf("expected write failure, got %v", err)
	}
}

func TestRejectionsUsesDayWindow(t *testing.T) {
	store := &fakePointStore{rejections: []domain.Rejection{{Error: "bad", Line: "x"}}}

	rejections, err := newTestService(store, nil).Rejections(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rejections) != 1 {
		t.Errorf("expected 1 rejection, got %d", len(rejections))
	}
	if store.rejectionArgs[0] != 24*time.Hour {
		t.Errorf("unexpected window %s", store.rejectionArgs[0])
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input      string
		expected   int64
		shouldFail bool
	}{
		{"2024-01-01T10:00:00+05:30", 1704083400, false},
		{"2024-01-01T04:30:00Z", 1704083400, false},
		{"2024-01-01T04:30:00.000Z", 1704083400, false},
		{"2024-01-01T10:00:00+0530", 1704083400, false},
		{"2024-01-01T04:30:00", 1704083400, false},
		{"2024-01-01", 1704067200, false},
		{"", 0, true},
		{"01/01/2024", 0, true},
	}

	for _, test := range tests {
		result, err := parseTimestamp(test.input)
		if test.shouldFail {
			if err == nil {
				t.Errorf("expected error for input %q, but got nil", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("expected no error for input %q, but got %s", test.input, err)
			continue
		}
		if result.Unix() != test.expected {
			t.Errorf("expected %d for input %q, but got %d", test.expected, test.input, result.Unix())
		}
	}
}

func TestFailedWriteQueryServiceClampsLimit(t *testing.T) {
	journal := &fakeJournal{}
	for i := 0; i < 3; i++ {
		journal.entries = append(journal.entries, domain.FailedWrite{Date: "d"})
	}
	svc := NewFailedWriteQueryService(journal)

	entries, err := svc.Recent(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
	entries, _ = svc.Recent(context.Background(), 0)
	if len(entries) != 3 {
		t.Errorf("expected default limit to return all 3 entries, got %d", len(entries))
	}
}
