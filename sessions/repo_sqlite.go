package sessions

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SessionEntry is one stored field of a browser session
type SessionEntry struct {
	SessionID string     `gorm:"primaryKey;size:64"`
	Name      string     `gorm:"primaryKey;size:32"`
	Value     string     `gorm:"type:text"`
	ExpiresAt *time.Time `gorm:"index"`
}

// TableName implements gorm's tabler
func (SessionEntry) TableName() string {
	return "session_entries"
}

// SQLiteRepo stores one row per session entry
type SQLiteRepo struct {
	db      *gorm.DB
	nowTime func() time.Time
}

// SQLiteRepoOption modifies a SQLiteRepo
type SQLiteRepoOption func(*SQLiteRepo)

// WithSQLiteNowTime sets the clock used for expiry (primarily for testing)
func WithSQLiteNowTime(nowFunc func() time.Time) SQLiteRepoOption {
	return func(r *SQLiteRepo) {
		r.nowTime = nowFunc
	}
}

// NewSQLiteRepo migrates the entries table and returns the repo
func NewSQLiteRepo(db *gorm.DB, options ...SQLiteRepoOption) (*SQLiteRepo, error) {
	if db == nil {
		return nil, fmt.Errorf("[NewSQLiteRepo] database handle required")
	}
	if err := db.AutoMigrate(&SessionEntry{}); err != nil {
		return nil, fmt.Errorf("[NewSQLiteRepo] auto migrate: %w", err)
	}
	r := &SQLiteRepo{db: db, nowTime: time.Now}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Put replaces all rows of the session in one transaction
func (r *SQLiteRepo) Put(ctx context.Context, sessionID string, entries map[string]string, ttl time.Duration) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	var expiresAt *time.Time
	if ttl > 0 {
		exp := r.nowTime().UTC().Add(ttl)
		expiresAt = &exp
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&SessionEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]SessionEntry, 0, len(entries))
		for name, value := range entries {
			rows = append(rows, SessionEntry{
				SessionID: sessionID,
				Name:      name,
				Value:     value,
				ExpiresAt: expiresAt,
			})
		}
		return tx.Create(&rows).Error
	})
}

// Get returns the live entries of a session
func (r *SQLiteRepo) Get(ctx context.Context, sessionID string) (map[string]string, error) {
	entries := map[string]string{}
	if sessionID == "" {
		return entries, nil
	}

	var rows []SessionEntry
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND (expires_at IS NULL OR expires_at > ?)", sessionID, r.nowTime().UTC()).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("[SQLiteRepo Get] %w", err)
	}
	for _, row := range rows {
		entries[row.Name] = row.Value
	}
	return entries, nil
}

// Delete removes every row of the session with a single statement
func (r *SQLiteRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&SessionEntry{}).Error; err != nil {
		return fmt.Errorf("[SQLiteRepo Delete] %w", err)
	}
	return nil
}

// DeleteExpired purges rows whose session expired
func (r *SQLiteRepo) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", r.nowTime().UTC()).
		Delete(&SessionEntry{}).Error
}

// Close closes the underlying sql.DB
func (r *SQLiteRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
