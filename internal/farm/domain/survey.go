package domain

import (
	"strings"
	"time"
)

// Measurement is the line-protocol measurement every survey answer is written to.
const Measurement = "Vimal_Task"

// DefaultLanguage is used when a submission does not name its display language.
const DefaultLanguage = "hindi"

// Photo is one uploaded image attached to an answer.
type Photo struct {
	URL string `json:"url"`
}

// Answer is the client's reply to a single question.
type Answer struct {
	Text         string
	FollowupText string
	Photos       []Photo
}

// PhotoURLs returns the non-empty photo URLs in submission order.
func (a Answer) PhotoURLs() []string {
	urls := make([]string, 0, len(a.Photos))
	for _, photo := range a.Photos {
		if url := strings.TrimSpace(photo.URL); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

// IsEmpty reports whether the answer carries nothing worth persisting.
func (a Answer) IsEmpty() bool {
	return strings.TrimSpace(a.Text) == "" &&
		strings.TrimSpace(a.FollowupText) == "" &&
		len(a.PhotoURLs()) == 0
}

// Response pairs a question text with its answer, keeping submission order.
type Response struct {
	Question string
	Answer   Answer
}

// Submission is one survey form as posted by the client.
type Submission struct {
	Date        string
	SurveyType  string
	Language    string
	Responses   []Response
	HealthScore *float64
	Timestamp   time.Time
}

// Rejection is a point the time-series store refused to ingest.
type Rejection struct {
	Time  time.Time `json:"time"`
	Error string    `json:"error"`
	Line  string    `json:"line"`
}

// FailedWrite keeps the encoded lines of a submission whose write failed or
// could not be verified, so it can be replayed later.
type FailedWrite struct {
	ID         string    `json:"id"`
	SurveyType string    `json:"type"`
	Date       string    `json:"date"`
	Kind       string    `json:"kind"`
	Reason     string    `json:"reason"`
	Lines      []string  `json:"lines"`
	CreatedAt  time.Time `json:"createdAt"`
}
