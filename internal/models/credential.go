package models

import "time"

// Credential stores an encrypted third-party model API key.
// Only the masked prefix/suffix ever leave the service; the plaintext key
// exists in memory solely while a grading job is being dispatched.
type Credential struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Label        string    `gorm:"size:120;not null" json:"label"`
	Provider     string    `gorm:"size:32;not null" json:"provider"`
	EncryptedKey []byte    `gorm:"not null" json:"-"`
	KeyPrefix    string    `gorm:"size:4" json:"key_prefix"`
	KeySuffix    string    `gorm:"size:4" json:"key_suffix"`
	OwnerID      *uint     `gorm:"index" json:"owner_id"`
	Global       bool      `gorm:"not null;default:false" json:"global"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
