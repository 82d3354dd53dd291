package application

import (
	"context"
	"errors"
	"testing"
)

type fakeImageStore struct {
	url      string
	err      error
	dataURI  string
	publicID string
}

func (f *fakeImageStore) Upload(_ context.Context, dataURI, publicID string) (string, error) {
	f.dataURI = dataURI
	f.publicID = publicID
	return f.url, f.err
}

type fakeShrinker struct {
	result string
	err    error
}

func (f fakeShrinker) Shrink(string) (string, error) {
	return f.result, f.err
}

func TestImageUpload(t *testing.T) {
	store := &fakeImageStore{url: "https://res.cloudinary.com/demo/smart_agri/q1.jpg"}
	svc := NewImageService(ImageServiceConfig{Store: store, Folder: "smart_agri", Logger: quietLogger()})

	url, err := svc.Upload(context.Background(), UploadImageCommand{
		Image:      "data:image/png;base64,iVBORw0KGgo=",
		QuestionID: "q1",
		Timestamp:  "2024-01-01T10:00:00.123Z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != store.url {
		t.Errorf("unexpected url %q", url)
	}
	if store.publicID != "smart_agri/q1_2024-01-01T10-00-00-123Z" {
		t.Errorf("unexpected public id %q", store.publicID)
	}
	if store.dataURI != "data:image/png;base64,iVBORw0KGgo=" {
		t.Errorf("unexpected data uri %q", store.dataURI)
	}
}

func TestImageUploadRequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		cmd     UploadImageCommand
		message string
	}{
		{"missing image", UploadImageCommand{QuestionID: "q1"}, "Missing image or question_id"},
		{"missing question id", UploadImageCommand{Image: "data:image/jpeg;base64,AAAA"}, "Missing image or question_id"},
		{"no separator", UploadImageCommand{Image: "AAAA", QuestionID: "q1"}, "Invalid base64 image data"},
		{"empty payload", UploadImageCommand{Image: "data:image/jpeg;base64,", QuestionID: "q1"}, "Invalid base64 image data"},
	}

	for _, test := range tests {
		store := &fakeImageStore{url: "u"}
		svc := NewImageService(ImageServiceConfig{Store: store, Logger: quietLogger()})
		_, err := svc.Upload(context.Background(), test.cmd)
		if KindOf(err) != KindMalformedRequest {
			t.Errorf("%s: expected malformed request, got %v", test.name, err)
			continue
		}
		if err.Error() != test.message {
			t.Errorf("%s: unexpected message %q", test.name, err.Error())
		}
		if store.dataURI != "" {
			t.Errorf("%s: store must not be called", test.name)
		}
	}
}

func TestImageUploadStoreFailure(t *testing.T) {
	store := &fakeImageStore{err: errors.New("Invalid upload preset")}
	svc := NewImageService(ImageServiceConfig{Store: store, Logger: quietLogger()})

	_, err := svc.Upload(context.Background(), UploadImageCommand{Image: "data:image/jpeg;base64,AAAA", QuestionID: "q2", Timestamp: "t"})
	if KindOf(err) != KindUpstreamUploadFailure {
		t.Fatalf("expected upload failure, got %v", err)
	}
	if err.Error() != "Failed to upload to Cloudinary: Invalid upload preset" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestImageUploadWithoutStore(t *testing.T) {
	svc := NewImageService(ImageServiceConfig{Logger: quietLogger()})
	_, err := svc.Upload(context.Background(), UploadImageCommand{Image: "data:image/jpeg;base64,AAAA", QuestionID: "q2"})
	if KindOf(err) != KindUpstreamUploadFailure {
		t.Fatalf("expected upload failure, got %v", err)
	}
}

func TestImageUploadShrinker(t *testing.T) {
	store := &fakeImageStore{url: "u"}
	svc := NewImageService(ImageServiceConfig{Store: store, Shrinker: fakeShrinker{result: "SMALL"}, Logger: quietLogger()})
	if _, err := svc.Upload(context.Background(), UploadImageCommand{Image: "data:image/jpeg;base64,LARGE", QuestionID: "q3", Timestamp: "t"}); err != nil {
		t.Fatal(err)
	}
	if store.dataURI != "data:image/jpeg;base64,SMALL" {
		t.Errorf("expected shrunk payload, got %q", store.dataURI)
	}

	svc = NewImageService(ImageServiceConfig{Store: store, Shrinker: fakeShrinker{err: errors.New("not an image")}, Logger: quietLogger()})
	if _, err := svc.Upload(context.Background(), UploadImageCommand{Image: "data:image/jpeg;base64,RAW", QuestionID: "q3", Timestamp: "t"}); err != nil {
		t.Fatal(err)
	}
	if store.dataURI != "data:image/jpeg;base64,RAW" {
		t.Errorf("expected raw payload when shrinking fails, got %q", store.dataURI)
	}
}

func TestBuildPublicID(t *testing.T) {
	if id := BuildPublicID("", "q4", "12:30.5"); id != "q4_12-30-5" {
		t.Errorf("unexpected id %q", id)
	}
}
