package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

func TestBuildSubmissionDocumentForcesNewStatus(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	sub := &domain.Submission{Name: "Ada", Email: "ada@example.com", Phone: "1", FileName: "board.zip", FileURL: "https://files/x.zip", ObjectKey: "pcb_uploads/x.zip", Status: domain.StatusCompleted}

	doc := buildSubmissionDocument(sub, id, created)
	if doc.Status != "new" || doc.ID != id || !doc.CreatedAt.Equal(created) {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestSubmissionDocumentRoundTripsThroughBSON(t *testing.T) {
	id := primitive.NewObjectID()
	doc := SubmissionDocument{
		ID:        id,
		Name:      "Ada",
		Email:     "ada@example.com",
		Phone:     "555",
		FileName:  "board.zip",
		FileURL:   "https://files/x.zip",
		ObjectKey: "pcb_uploads/x.zip",
		Status:    "processing",
		CreatedAt: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var generic bson.M
	if err := bson.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := generic["notes"]; ok {
		t.Fatalf("empty notes should be omitted")
	}
	if generic["fileURL"] != "https://files/x.zip" {
		t.Fatalf("unexpected fileURL field %v", generic["fileURL"])
	}

	var decoded SubmissionDocument
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal typed: %v", err)
	}
	sub := mapSubmissionDocument(decoded)
	if sub.ID != id.Hex() || sub.Status != domain.StatusProcessing {
		t.Fatalf("unexpected submission %+v", sub)
	}
}

func TestMapSubmissionDocumentUnknownStatus(t *testing.T) {
	sub := mapSubmissionDocument(SubmissionDocument{ID: primitive.NewObjectID(), Status: "legacy"})
	if sub.Status != domain.StatusNew {
		t.Fatalf("unknown stored status should read as new, got %s", sub.Status)
	}
}
