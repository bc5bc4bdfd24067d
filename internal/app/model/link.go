package model

import "time"

// Link status values. A link starts Active and is demoted to Inactive by the
// expiry sweeper once its expiration date has passed.
const (
	LinkStatusActive   = "Active"
	LinkStatusInactive = "Inactive"
)

// Link describes a shortened URL owned by exactly one user.
type Link struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	UserID      string     `json:"userId" gorm:"size:36;not null;index"`
	OriginalURL string     `json:"originalLink" gorm:"type:text;not null"`
	ShortCode   string     `json:"shortLink" gorm:"size:32;not null;uniqueIndex"`
	Remarks     string     `json:"remarks,omitempty" gorm:"type:text"`
	Clicks      int64      `json:"clicks" gorm:"not null;default:0"`
	Status      string     `json:"status" gorm:"size:16;not null;default:Active"`
	ExpiresAt   *time.Time `json:"expirationDate,omitempty" gorm:"index"`
	CreatedAt   time.Time  `json:"date" gorm:"autoCreateTime"`
}
