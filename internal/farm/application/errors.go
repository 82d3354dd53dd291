package application

import "errors"

// ErrorKind classifies failures so the interface layer can pick a status code.
type ErrorKind string

const (
	KindMalformedRequest       ErrorKind = "malformed_request"
	KindUnrecognizedSurveyType ErrorKind = "unrecognized_survey_type"
	KindEmptyAfterFiltering    ErrorKind = "empty_after_filtering"
	KindUpstreamUploadFailure  ErrorKind = "upstream_upload_failure"
	KindUpstreamWriteFailure   ErrorKind = "upstream_write_failure"
	KindWriteUnverified        ErrorKind = "write_unverified"
	KindWriteRejected          ErrorKind = "write_rejected"
)

// Error is a use-case failure with a client-facing message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsClientError reports whether the failure was caused by the request itself.
func (e *Error) IsClientError() bool {
	switch e.Kind {
	case KindMalformedRequest, KindUnrecognizedSurveyType, KindEmptyAfterFiltering:
		return true
	}
	return false
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
