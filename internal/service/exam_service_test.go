package service

import (
	"errors"
	"testing"
	"time"

	"viksit_backend/internal/model"
	"viksit_backend/internal/repository"
	"viksit_backend/internal/util"
)

func buildMock(questions ...model.Question) *model.Mock {
	m := &model.Mock{Title: "t"}
	m.ID = 1
	m.Questions = questions
	return m
}

func question(id uint, correct int, optionIDs ...uint) model.Question {
	q := model.Question{Text: "q"}
	q.ID = id
	for i, oid := range optionIDs {
		o := model.Option{Text: "o", IsCorrect: i == correct}
		o.ID = oid
		q.Options = append(q.Options, o)
	}
	return q
}

func TestScore(t *testing.T) {
	mock := buildMock(
		question(1, 0, 10, 11),
		question(2, 1, 20, 21),
		question(3, 1, 30, 31, 32),
		question(4, 0, 40, 41),
	)

	cases := []struct {
		name               string
		answers            map[uint]uint
		attempted, correct int
		score              float64
	}{
		{"none", map[uint]uint{}, 0, 0, 0},
		{"all correct", map[uint]uint{1: 10, 2: 21, 3: 31, 4: 40}, 4, 4, 100},
		{"half", map[uint]uint{1: 10, 2: 20, 3: 31}, 3, 2, 50},
		{"all wrong", map[uint]uint{1: 11, 2: 20, 3: 32, 4: 41}, 4, 0, 0},
		{"zero option id is unanswered", map[uint]uint{1: 0, 2: 21}, 1, 1, 25},
		{"stray question ignored", map[uint]uint{99: 10, 4: 40}, 1, 1, 25},
	}
	for _, c := range cases {
		res, reviews, err := Score(mock, c.answers)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", c.name, err)
		}
		if res.Total != 4 || res.Attempted != c.attempted || res.Correct != c.correct || res.Score != c.score {
			t.Fatalf("%s: got total=%d attempted=%d correct=%d score=%v", c.name, res.Total, res.Attempted, res.Correct, res.Score)
		}
		if len(reviews) != 4 {
			t.Fatalf("%s: expected 4 reviews, got %d", c.name, len(reviews))
		}
	}
}

func TestScoreRejectsForeignOption(t *testing.T) {
	mock := buildMock(question(1, 0, 10, 11), question(2, 0, 20, 21))

	for _, answers := range []map[uint]uint{
		{1: 20},  // belongs to question 2
		{1: 999}, // does not exist
	} {
		if _, _, err := Score(mock, answers); !errors.Is(err, util.ErrValidation) {
			t.Fatalf("answers %v: expected validation error, got %v", answers, err)
		}
	}
}

func TestScoreQuestionWithoutCorrectOption(t *testing.T) {
	q := question(1, -1, 10, 11)
	res, reviews, err := Score(buildMock(q), map[uint]uint{1: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Attempted != 1 || res.Correct != 0 || res.Score != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if reviews[0].Correct != nil || reviews[0].IsCorrect {
		t.Fatalf("review should have no correct option: %+v", reviews[0])
	}
}

func TestScoreEmptyMock(t *testing.T) {
	res, _, err := Score(buildMock(), map[uint]uint{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || res.Score != 0 {
		t.Fatalf("empty mock should score 0, got %+v", res)
	}
}

func TestSubmitExamMathTest(t *testing.T) {
	db := newTestDB(t)
	mock := seedMathTest(t, db)
	svc := NewExamService(repository.NewMockRepository(db), repository.NewResultRepository(db))
	svc.now = func() time.Time { return fixedNow }

	q := mock.Questions[0]
	wrong, right := q.Options[0].ID, q.Options[1].ID

	cases := []struct {
		answers            map[uint]uint
		attempted, correct int
		score              float64
	}{
		{map[uint]uint{q.ID: right}, 1, 1, 100},
		{map[uint]uint{q.ID: wrong}, 1, 0, 0},
		{map[uint]uint{}, 0, 0, 0},
	}
	for _, c := range cases {
		out, err := svc.SubmitExam(7, mock.ID, c.answers)
		if err != nil {
			t.Fatalf("submit %v: %v", c.answers, err)
		}
		r := out.Result
		if r.Total != 1 || r.Attempted != c.attempted || r.Correct != c.correct || r.Score != c.score {
			t.Fatalf("submit %v: got %+v", c.answers, r)
		}
		if r.ID == 0 || r.UserID != 7 {
			t.Fatalf("result not stored for user: %+v", r)
		}
	}

	results, err := svc.ListResults(7)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 stored results, got %d", len(results))
	}
	if results[0].Mock == nil || results[0].Mock.Title != "Math Test" {
		t.Fatalf("result should preload its mock: %+v", results[0])
	}
}

func TestSubmitExamInvalidOptionWritesNothing(t *testing.T) {
	db := newTestDB(t)
	mock := seedMathTest(t, db)
	svc := NewExamService(repository.NewMockRepository(db), repository.NewResultRepository(db))

	_, err := svc.SubmitExam(7, mock.ID, map[uint]uint{mock.Questions[0].ID: 12345})
	if !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	n, err := svc.ResultRepo.CountByUserAndMock(7, mock.ID)
	if err != nil || n != 0 {
		t.Fatalf("expected no stored results, got %d (%v)", n, err)
	}
}

func TestGetExamNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(repository.NewMockRepository(db), repository.NewResultRepository(db))
	if _, err := svc.GetExam(404); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.SubmitExam(1, 404, nil); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected not found on submit, got %v", err)
	}
}

func TestGetExamOrdersQuestions(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewMockRepository(db)
	mock := &model.Mock{
		Title: "Ordering",
		Questions: []model.Question{
			{Text: "second", Position: 2, Options: []model.Option{{Text: "b", Position: 2}, {Text: "a", IsCorrect: true, Position: 1}}},
			{Text: "first", Position: 1, Options: []model.Option{{Text: "x", IsCorrect: true, Position: 1}, {Text: "y", Position: 2}}},
		},
	}
	if err := repo.CreateWithQuestions(mock); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := NewExamService(repo, repository.NewResultRepository(db)).GetExam(mock.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Questions[0].Text != "first" || got.Questions[1].Text != "second" {
		t.Fatalf("questions out of order: %q, %q", got.Questions[0].Text, got.Questions[1].Text)
	}
	if got.Questions[1].Options[0].Text != "a" {
		t.Fatalf("options out of order: %+v", got.Questions[1].Options)
	}
}
