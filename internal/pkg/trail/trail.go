// Package trail stamps who/when bookkeeping onto tracked rows.
package trail

import (
	"time"

	"gorm.io/gorm"
)

// Trail is embedded by every tracked model.
type Trail struct {
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	CreatedBy string    `gorm:"column:created_by;size:100" json:"created_by"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
	UpdatedBy string    `gorm:"column:updated_by;size:100" json:"updated_by"`
}

// SoftDelete is embedded by models removed through deleted_at/deleted_by.
// gorm hides rows with deleted_at set from every scoped query.
type SoftDelete struct {
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"column:deleted_by;size:100" json:"deleted_by,omitempty"`
}

func Now() time.Time {
	return time.Now().UTC()
}

func (t *Trail) StampCreate(user string, now time.Time) {
	t.CreatedAt = now
	t.CreatedBy = user
	t.UpdatedAt = now
	t.UpdatedBy = user
}

func (t *Trail) StampUpdate(user string, now time.Time) {
	t.UpdatedAt = now
	t.UpdatedBy = user
}

// ForUpdate returns a copy of data with updated_* set.
func ForUpdate(data map[string]any, user string) map[string]any {
	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	out["updated_by"] = user
	out["updated_at"] = Now()
	return out
}

func ForDelete(user string) map[string]any {
	return map[string]any{
		"deleted_at": Now(),
		"deleted_by": user,
	}
}
