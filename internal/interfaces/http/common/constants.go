package common

const (
	// MaxSubmissionBody limits JSON request bodies for survey submissions.
	MaxSubmissionBody = 1 << 20
	// MaxImageRequestBody limits inline base64 photo uploads.
	MaxImageRequestBody = 20 << 20
	// DefaultFailedWriteLimit is the page size of the failed-write listing.
	DefaultFailedWriteLimit = 50
)
