package mongo

import (
	"time"

	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FailedWriteDocument は検証できなかった書き込みを MongoDB 上で保持するスキーマ。
type FailedWriteDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	SurveyType string             `bson:"type"`
	Date       string             `bson:"date"`
	Kind       string             `bson:"kind"`
	Reason     string             `bson:"reason"`
	Lines      []string           `bson:"lines,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// newFailedWriteDocument はドメインの FailedWrite を保存用ドキュメントへ変換する。
func newFailedWriteDocument(entry domain.FailedWrite) FailedWriteDocument {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return FailedWriteDocument{
		ID:         primitive.NewObjectID(),
		SurveyType: entry.SurveyType,
		Date:       entry.Date,
		Kind:       entry.Kind,
		Reason:     entry.Reason,
		Lines:      append([]string(nil), entry.Lines...),
		CreatedAt:  createdAt.UTC(),
	}
}

func mapFailedWriteDocument(doc FailedWriteDocument) domain.FailedWrite {
	return domain.FailedWrite{
		ID:         doc.ID.Hex(),
		SurveyType: doc.SurveyType,
		Date:       doc.Date,
		Kind:       doc.Kind,
		Reason:     doc.Reason,
		Lines:      doc.Lines,
		CreatedAt:  doc.CreatedAt,
	}
}
