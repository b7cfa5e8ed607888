package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"viksit_backend/internal/service"
	"viksit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

func (c *ExamController) ShowMock(ctx *gin.Context) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.NotFoundPage(ctx)
		return
	}

	mock, err := c.ExamService.GetExam(id)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFoundPage(ctx)
			return
		}
		util.InternalErrorPage(ctx, err)
		return
	}

	util.Render(ctx, http.StatusOK, "mock.html", gin.H{
		"title": mock.Title,
		"mock":  mock,
	})
}

// SubmitRedirect sends a GET on the submit URL back to the exam.
func (c *ExamController) SubmitRedirect(ctx *gin.Context) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.NotFoundPage(ctx)
		return
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("/mock/%d/", id))
}

func (c *ExamController) SubmitMock(ctx *gin.Context) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.NotFoundPage(ctx)
		return
	}

	answers, err := parseAnswers(ctx)
	if err != nil {
		util.BadRequestPage(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	outcome, err := c.ExamService.SubmitExam(claims.UserID, id, answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotFound):
			util.NotFoundPage(ctx)
		case errors.Is(err, util.ErrValidation):
			util.BadRequestPage(ctx, validationMessage(err))
		default:
			util.InternalErrorPage(ctx, err)
		}
		return
	}

	util.Render(ctx, http.StatusOK, "result.html", gin.H{
		"title":   outcome.Mock.Title + " result",
		"mock":    outcome.Mock,
		"result":  outcome.Result,
		"answers": outcome.Answers,
	})
}

// parseAnswers reads q<questionID>=<optionID> fields. Empty values mean the
// question was skipped. A question may be answered at most once.
func parseAnswers(ctx *gin.Context) (map[uint]uint, error) {
	if err := ctx.Request.ParseForm(); err != nil {
		return nil, util.NewValidationError("form", "Could not read the submitted answers.")
	}

	answers := make(map[uint]uint)
	for key, values := range ctx.Request.PostForm {
		if !strings.HasPrefix(key, "q") || len(values) == 0 {
			continue
		}
		questionID, ok := util.ParseID(strings.TrimPrefix(key, "q"))
		if !ok {
			continue
		}
		raw := strings.TrimSpace(values[0])
		if raw == "" {
			continue
		}
		optionID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || optionID == 0 {
			return nil, util.ErrUnknownOption
		}
		if _, dup := answers[questionID]; dup {
			return nil, util.ErrDuplicateAnswer
		}
		answers[questionID] = uint(optionID)
	}
	return answers, nil
}

func validationMessage(err error) string {
	var verr *util.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
