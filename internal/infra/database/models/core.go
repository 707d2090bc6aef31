package models

import (
	"time"

	"gorm.io/datatypes"
)

// ShiftDocument is one copy of a shift inside one logical store.
type ShiftDocument struct {
	Store     string         `json:"store" gorm:"primaryKey;type:text"`
	ID        string         `json:"id" gorm:"primaryKey;type:text;index"`
	CreatedBy string         `json:"createdBy" gorm:"type:text;index"`
	Href      string         `json:"href" gorm:"type:text;index"`
	Body      datatypes.JSON `json:"body" gorm:"type:jsonb;not null"`
	Modified  time.Time      `json:"modified" gorm:"type:timestamp with time zone;not null"`
	CDate     time.Time      `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// ReplicationEdge records the status of a source -> target mirror request.
type ReplicationEdge struct {
	Source      string     `json:"source" gorm:"primaryKey;type:text"`
	Target      string     `json:"target" gorm:"primaryKey;type:text"`
	RequestedAt time.Time  `json:"requestedAt" gorm:"type:timestamp with time zone;not null"`
	CompletedAt *time.Time `json:"completedAt" gorm:"type:timestamp with time zone"`
	Mirrored    int64      `json:"mirrored" gorm:"not null;default:0"`
	LastError   string     `json:"lastError" gorm:"type:text"`
}
