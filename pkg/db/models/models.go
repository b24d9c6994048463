package models

import (
	"time"

	"gorm.io/gorm"
)

// Transfer keeps the latest stage reached by one initiating transaction.
type Transfer struct {
	ID               string    `gorm:"primaryKey;type:varchar(64)"`
	Mode             string    `gorm:"type:varchar(16)"`
	SourceChain      string    `gorm:"type:varchar(64)"`
	DestinationChain string    `gorm:"type:varchar(64)"`
	Stage            string    `gorm:"type:varchar(32);index"`
	Reason           string    `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"type:timestamp(6);default:current_timestamp(6)"`
	UpdatedAt        time.Time `gorm:"type:timestamp(6);default:current_timestamp(6)"`
}

// StageEvent is one stage transition. Rows are append only.
type StageEvent struct {
	gorm.Model
	TransferID       string `gorm:"type:varchar(64);index:idx_stage_transfer"`
	CanonicalID      string `gorm:"type:varchar(64)"`
	MethodIdentifier string `gorm:"type:varchar(255)"`
	Mode             string `gorm:"type:varchar(16)"`
	Stage            string `gorm:"type:varchar(32)"`
	SourceChain      string `gorm:"type:varchar(64)"`
	DestinationChain string `gorm:"type:varchar(64)"`
	Height           int64
	LibHeight        int64
	Reason           string    `gorm:"type:text"`
	OccurredAt       time.Time `gorm:"type:timestamp(6);index:idx_stage_transfer"`
}

// StageDocument is the mongo representation of a stage transition.
type StageDocument struct {
	TransferID       string    `bson:"transfer_id"`
	CanonicalID      string    `bson:"canonical_id,omitempty"`
	MethodIdentifier string    `bson:"method_identifier,omitempty"`
	Mode             string    `bson:"mode"`
	Stage            string    `bson:"stage"`
	SourceChain      string    `bson:"source_chain"`
	DestinationChain string    `bson:"destination_chain"`
	Height           int64     `bson:"height,omitempty"`
	LibHeight        int64     `bson:"lib_height,omitempty"`
	Reason           string    `bson:"reason,omitempty"`
	OccurredAt       time.Time `bson:"occurred_at"`
}
