package service

import (
	"errors"
	"time"

	"viksit_backend/internal/model"
	"viksit_backend/internal/repository"
	"viksit_backend/internal/util"
	"viksit_backend/pkg/logger"
	"viksit_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExamService struct {
	MockRepo   *repository.MockRepository
	ResultRepo *repository.ResultRepository

	now func() time.Time
}

func NewExamService(mockRepo *repository.MockRepository, resultRepo *repository.ResultRepository) *ExamService {
	return &ExamService{
		MockRepo:   mockRepo,
		ResultRepo: resultRepo,
		now:        time.Now,
	}
}

// AnswerReview is one row of the result page.
type AnswerReview struct {
	Question  *model.Question
	Selected  *model.Option
	Correct   *model.Option
	IsCorrect bool
}

type ExamOutcome struct {
	Mock    *model.Mock
	Result  *model.MockResult
	Answers []AnswerReview
}

func (s *ExamService) ListMocks(course string) ([]model.Mock, error) {
	return s.MockRepo.List(course)
}

// GetExam loads a mock with its questions and options.
func (s *ExamService) GetExam(mockID uint) (*model.Mock, error) {
	mock, err := s.MockRepo.FindWithQuestions(mockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundf("mock %d", mockID)
		}
		return nil, err
	}
	return mock, nil
}

// Score grades answers (question id → option id) against mock without
// touching the database. A question with no correct option can be attempted
// but never scored.
func Score(mock *model.Mock, answers map[uint]uint) (*model.MockResult, []AnswerReview, error) {
	result := &model.MockResult{
		MockID: mock.ID,
		Total:  len(mock.Questions),
	}
	reviews := make([]AnswerReview, 0, len(mock.Questions))

	for i := range mock.Questions {
		q := &mock.Questions[i]
		review := AnswerReview{
			Question: q,
			Correct:  q.CorrectOption(),
		}

		if optionID, ok := answers[q.ID]; ok && optionID != 0 {
			selected := q.FindOption(optionID)
			if selected == nil {
				return nil, nil, util.ErrUnknownOption
			}
			result.Attempted++
			review.Selected = selected
			if selected.IsCorrect && review.Correct != nil {
				result.Correct++
				review.IsCorrect = true
			}
		}
		reviews = append(reviews, review)
	}

	result.Score = model.ScorePercent(result.Correct, result.Total)
	return result, reviews, nil
}

// SubmitExam grades the answers and stores one MockResult for the attempt.
func (s *ExamService) SubmitExam(userID, mockID uint, answers map[uint]uint) (*ExamOutcome, error) {
	mock, err := s.GetExam(mockID)
	if err != nil {
		return nil, err
	}

	result, reviews, err := Score(mock, answers)
	if err != nil {
		return nil, err
	}
	result.UserID = userID
	result.CreatedAt = s.now()

	if err := s.ResultRepo.Create(result); err != nil {
		return nil, err
	}

	monitoring.ExamSubmissions.WithLabelValues(mock.Course).Inc()
	logger.Log.Info("Mock submitted",
		zap.Uint("userID", userID),
		zap.Uint("mockID", mockID),
		zap.Int("total", result.Total),
		zap.Int("attempted", result.Attempted),
		zap.Int("correct", result.Correct),
	)

	result.Mock = mock
	return &ExamOutcome{Mock: mock, Result: result, Answers: reviews}, nil
}

func (s *ExamService) ListResults(userID uint) ([]model.MockResult, error) {
	return s.ResultRepo.ListByUser(userID)
}
