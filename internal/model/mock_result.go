package model

import "time"

// MockResult records one exam attempt. Rows are written once and never updated.
type MockResult struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	MockID    uint      `gorm:"index;not null" json:"mockId"`
	Mock      *Mock     `gorm:"foreignKey:MockID" json:"mock,omitempty"`
	Total     int       `gorm:"not null" json:"total"`
	Attempted int       `gorm:"not null" json:"attempted"`
	Correct   int       `gorm:"not null" json:"correct"`
	Score     float64   `gorm:"not null" json:"score"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (MockResult) TableName() string {
	return "mock_results"
}

// ScorePercent is correct/total*100, and 0 for an exam with no questions.
func ScorePercent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
