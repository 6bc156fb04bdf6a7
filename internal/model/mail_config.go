package model

import "time"

// MailConfig holds the outbound alert mail settings, a single row mutated
// through the admin surface.
type MailConfig struct {
	ID              int64     `gorm:"primaryKey" json:"-"`
	SenderEmail     string    `gorm:"size:120;not null" json:"sender_email"`
	AppPassword     string    `gorm:"size:100;not null" json:"-"`
	RecipientEmails string    `gorm:"type:text;not null" json:"recipient_emails"`
	IsConfigured    bool      `gorm:"not null;default:false" json:"is_configured"`
	UpdatedAt       time.Time `json:"-"`
}

// Complete reports whether the configuration carries everything needed to
// actually send mail.
func (c *MailConfig) Complete() bool {
	return c != nil && c.IsConfigured &&
		c.SenderEmail != "" && c.AppPassword != "" && c.RecipientEmails != ""
}
