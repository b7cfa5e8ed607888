package model

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Mock is a timed multiple-choice exam. TimeLimit is in minutes and is only
// shown to the student, never enforced on submission.
type Mock struct {
	BaseModel
	Title      string     `gorm:"size:200;not null" json:"title"`
	Course     string     `gorm:"size:50;index" json:"course"`
	Difficulty Difficulty `gorm:"size:10;default:'medium'" json:"difficulty"`
	TimeLimit  int        `gorm:"default:60" json:"timeLimit"`
	Questions  []Question `gorm:"foreignKey:MockID" json:"questions,omitempty"`
}

func (Mock) TableName() string {
	return "mocks"
}

type Question struct {
	BaseModel
	MockID   uint     `gorm:"index;not null" json:"mockId"`
	Text     string   `gorm:"type:text;not null" json:"text"`
	Position int      `gorm:"default:0" json:"position"`
	Options  []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOption returns the option flagged correct, or nil when there is none.
func (q *Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// FindOption returns the option of q with the given id.
func (q *Question) FindOption(id uint) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

type Option struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"size:500;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
	Position   int    `gorm:"default:0" json:"position"`
}

func (Option) TableName() string {
	return "options"
}
