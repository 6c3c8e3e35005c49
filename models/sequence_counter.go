package models

import "time"

// SequenceCounter stores the last allocated value for named monotonic counters.
// It emulates auto-increment ids; allocation happens through a single atomic
// upsert in the repository, never through a read-then-write.
type SequenceCounter struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	Counter   uint64    `gorm:"not null;default:0" json:"counter"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }
