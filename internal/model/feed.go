package model

import "time"

// Feed represents a single feeding event. Volume is stored in integer
// microliters so no floating point rounding ever reaches the database;
// ounces is derived for display only.
type Feed struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	VolumeUL  int64     `json:"volume_ul" gorm:"not null"`
	FedAt     time.Time `json:"fed_at" gorm:"not null;index"`
	Timezone  string    `json:"timezone" gorm:"size:64;not null"`
	CreatedAt time.Time `json:"created_at"`
}
