package model

import "time"

// Session is a server-side login session. The ID doubles as the value of the
// session_id cookie; the CSRF token is fixed for the session's lifetime.
// Sessions live until explicit logout.
type Session struct {
	ID        string    `json:"-" gorm:"size:64;primaryKey"`
	UserID    uint      `json:"-" gorm:"not null;index"`
	CSRFToken string    `json:"-" gorm:"size:64;not null"`
	CreatedAt time.Time `json:"-"`
}
