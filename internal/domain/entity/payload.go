package entity

import (
	"time"
)

// RawEnvelope is the JSON wrapper of a message on the input topic.
// The flat reco line lives in payload.column01.
type RawEnvelope struct {
	Payload struct {
		Column01 *string `json:"column01"`
	} `json:"payload"`
}

// Reject stages
const (
	StageDecode   = "decode"
	StageDecorate = "decorate"
	StagePublish  = "publish"
)

// RejectedRecord keeps the input of a dropped record or search for diagnosis.
type RejectedRecord struct {
	ID         string    `bson:"_id,omitempty"`
	Stage      string    `bson:"stage"`
	SearchID   string    `bson:"searchId,omitempty"`
	Reason     string    `bson:"reason"`
	Input      []string  `bson:"input"`
	RejectedAt time.Time `bson:"rejectedAt"`
}
