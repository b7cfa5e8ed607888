package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// All returns every model managed by migrations, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Mock{},
		&Question{},
		&Option{},
		&MockResult{},
		&Author{},
		&StudyMaterial{},
		&StudyMaterialItem{},
		&CourseSubscription{},
	}
}
