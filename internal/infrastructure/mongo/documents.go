package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

// SubmissionDocument は MongoDB 上での応募スキーマを Go 構造体として表現したもの。
type SubmissionDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone"`
	Notes     string             `bson:"notes,omitempty"`
	FileName  string             `bson:"fileName"`
	FileURL   string             `bson:"fileURL"`
	ObjectKey string             `bson:"objectKey,omitempty"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func mapSubmissionDocument(doc SubmissionDocument) domain.Submission {
	status, err := domain.ParseStatus(doc.Status)
	if err != nil {
		status = domain.StatusNew
	}
	return domain.Submission{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		Email:     doc.Email,
		Phone:     doc.Phone,
		Notes:     doc.Notes,
		FileName:  doc.FileName,
		FileURL:   doc.FileURL,
		ObjectKey: doc.ObjectKey,
		Status:    status,
		CreatedAt: doc.CreatedAt.UTC(),
	}
}

func buildSubmissionDocument(sub *domain.Submission, id primitive.ObjectID, createdAt time.Time) SubmissionDocument {
	return SubmissionDocument{
		ID:        id,
		Name:      sub.Name,
		Email:     sub.Email,
		Phone:     sub.Phone,
		Notes:     sub.Notes,
		FileName:  sub.FileName,
		FileURL:   sub.FileURL,
		ObjectKey: sub.ObjectKey,
		Status:    string(domain.StatusNew),
		CreatedAt: createdAt,
	}
}
