package repository

import (
	"time"

	"gorm.io/gorm"
)

// TerminalScope restricts a query to rows owned by one terminal. An empty id
// matches nothing so a missing terminal never reads another terminal's rows.
func TerminalScope(terminalID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if terminalID == "" {
			return db.Where("1 = 0")
		}
		return db.Where("terminal_id = ?", terminalID)
	}
}

// ExpiredBefore selects rows whose expires_at is earlier than t.
func ExpiredBefore(t time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at < ?", t)
	}
}

// Oldest orders printers by registration time.
func Oldest(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}
