package public

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
)

type saveResponsesRequest struct {
	Date            string           `json:"date"`
	Type            string           `json:"type"`
	Language        string           `json:"language"`
	Responses       orderedResponses `json:"responses"`
	CropHealthScore *json.Number     `json:"crop_health_score"`
	Timestamp       string           `json:"timestamp"`
}

// healthScore returns nil when the score was omitted or null.
func (r saveResponsesRequest) healthScore() (*float64, error) {
	if r.CropHealthScore == nil || *r.CropHealthScore == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(r.CropHealthScore.String(), 64)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

type saveResponsesResponse struct {
	Message        string `json:"message"`
	RecordsWritten int    `json:"records_written"`
}

type answerPayload struct {
	Answer       looseString    `json:"answer"`
	FollowupText looseString    `json:"followupText"`
	Photos       []photoPayload `json:"photos"`
}

type photoPayload struct {
	URL looseString `json:"url"`
}

func (a answerPayload) toDomain() domain.Answer {
	answer := domain.Answer{
		Text:         string(a.Answer),
		FollowupText: string(a.FollowupText),
	}
	for _, photo := range a.Photos {
		answer.Photos = append(answer.Photos, domain.Photo{URL: string(photo.URL)})
	}
	return answer
}

// orderedResponses keeps the client's question order, which a Go map would
// lose. A repeated question keeps its first position and its last answer.
type orderedResponses []domain.Response

func (o *orderedResponses) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("responses must be an object keyed by question")
	}

	positions := make(map[string]int)
	responses := make([]domain.Response, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		question, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", keyTok)
		}
		var payload answerPayload
		if err := dec.Decode(&payload); err != nil {
			return fmt.Errorf("response %q: %w", question, err)
		}

		response := domain.Response{Question: question, Answer: payload.toDomain()}
		if i, seen := positions[question]; seen {
			responses[i] = response
			continue
		}
		positions[question] = len(responses)
		responses = append(responses, response)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*o = responses
	return nil
}

// looseString accepts JSON strings as well as bare numbers and booleans, which
// some clients send for answers and question ids.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*s = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '['):
		return errors.New("expected a scalar value")
	default:
		*s = looseString(trimmed)
	}
	return nil
}

type uploadImageRequest struct {
	Image      string      `json:"image"`
	QuestionID looseString `json:"question_id"`
	Timestamp  string      `json:"timestamp"`
}

type uploadImageResponse struct {
	ImageURL string `json:"image_url"`
}

type rejectionsResponse struct {
	Rejections []domain.Rejection `json:"rejections"`
}
