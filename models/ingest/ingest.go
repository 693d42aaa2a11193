package ingest

import (
	"time"

	"github.com/google/uuid"
)

type State string

const (
	Queued  State = "Queued"
	Staging State = "Staging"
	Parsing State = "Parsing"
	Merging State = "Merging"
	Done    State = "Done"
	Error   State = "Error"
)

type IngestRequest struct {
	Id         uuid.UUID `json:"id"`
	DataFolder string    `json:"dataFolder"`
	State      State     `json:"state"`
	Message    string    `json:"message"`
	CreatedAt  string    `json:"createdAt"`
	UpdatedAt  string    `json:"updatedAt"`
}

func NewIngestRequest(dataFolder string) *IngestRequest {
	now := time.Now().String()
	return &IngestRequest{
		Id:         uuid.New(),
		DataFolder: dataFolder,
		State:      Queued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (r *IngestRequest) Transition(state State, message string) {
	r.State = state
	r.Message = message
	r.UpdatedAt = time.Now().String()
}
