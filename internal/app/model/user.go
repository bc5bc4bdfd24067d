package model

import "time"

// User is an account that owns links. The password is stored only as a
// bcrypt hash and never serialized into responses.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Name         string    `json:"name" gorm:"size:128;not null"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Phone        string    `json:"ph,omitempty" gorm:"size:32"`
	PasswordHash string    `json:"-" gorm:"column:password;type:text;not null"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
