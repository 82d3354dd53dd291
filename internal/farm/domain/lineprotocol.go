package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

var (
	fieldEscaper  = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `,`, `\,`, ` `, `\ `, `=`, `\=`)
	tagEscaper    = strings.NewReplacer(`\`, `\\`, ` `, `\ `, `,`, `\,`, `=`, `\=`)
	typeFlattener = strings.NewReplacer(" ", "_", "&", "_")
)

// EscapeField escapes a string field value for line protocol.
func EscapeField(value string) string {
	return fieldEscaper.Replace(value)
}

// EscapeTag escapes a tag value for line protocol. Tag values are never quoted.
func EscapeTag(value string) string {
	return tagEscaper.Replace(value)
}

// TypeTag flattens a survey type name into a low-cardinality tag value.
func TypeTag(surveyType string) string {
	return typeFlattener.Replace(surveyType)
}

// Tag is one key/value pair of a record's tag set.
type Tag struct {
	Key   string
	Value string
}

// Field is one key/value pair of a record's field set. Numeric fields are
// written unquoted.
type Field struct {
	Key     string
	Value   string
	Numeric bool
}

// Record is one line-protocol point.
type Record struct {
	Measurement string
	Tags        []Tag
	Fields      []Field
	Timestamp   int64
}

// Field returns the raw value of the named field.
func (r Record) Field(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Line renders the record as a single line of line protocol.
func (r Record) Line() string {
	var b strings.Builder
	b.WriteString(r.Measurement)
	for _, tag := range r.Tags {
		b.WriteByte(',')
		b.WriteString(tag.Key)
		b.WriteByte('=')
		b.WriteString(EscapeTag(tag.Value))
	}
	b.WriteByte(' ')
	for i, field := range r.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(field.Key)
		b.WriteByte('=')
		if field.Numeric {
			b.WriteString(field.Value)
			continue
		}
		b.WriteByte('"')
		b.WriteString(EscapeField(field.Value))
		b.WriteByte('"')
	}
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(r.Timestamp, 10))
	return b.String()
}

// EncodeSubmission turns the validated responses of a submission into one
// record per response. The health score, when present, is attached to the
// first record only.
func EncodeSubmission(sub Submission, valid []Response) ([]Record, error) {
	language := sub.Language
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	timestamp := sub.Timestamp.UnixNano()

	records := make([]Record, 0, len(valid))
	for i, response := range valid {
		fields := make([]Field, 0, 5)
		if answer := strings.TrimSpace(response.Answer.Text); answer != "" {
			fields = append(fields, Field{Key: "answer", Value: answer})
		}
		if followup := strings.TrimSpace(response.Answer.FollowupText); followup != "" {
			fields = append(fields, Field{Key: "followup_text", Value: followup})
		}
		if urls := response.Answer.PhotoURLs(); len(urls) > 0 {
			photos, err := photosJSON(urls)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Key: "photos", Value: photos})
		}
		fields = append(fields, Field{Key: "question", Value: response.Question})
		if i == 0 && sub.HealthScore != nil {
			fields = append(fields, Field{
				Key:     "crop_health_score",
				Value:   strconv.FormatFloat(*sub.HealthScore, 'f', -1, 64),
				Numeric: true,
			})
		}

		records = append(records, Record{
			Measurement: Measurement,
			Tags: []Tag{
				{Key: "date", Value: sub.Date},
				{Key: "type", Value: TypeTag(sub.SurveyType)},
				{Key: "language", Value: language},
				{Key: "question_id", Value: "q" + strconv.Itoa(i+1)},
			},
			Fields:    fields,
			Timestamp: timestamp,
		})
	}
	return records, nil
}

// Lines renders every record.
func Lines(records []Record) []string {
	lines := make([]string, len(records))
	for i, record := range records {
		lines[i] = record.Line()
	}
	return lines
}

func photosJSON(urls []string) (string, error) {
	photos := make([]Photo, len(urls))
	for i, url := range urls {
		photos[i] = Photo{URL: url}
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(photos); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
