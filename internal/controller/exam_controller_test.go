package controller

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"viksit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func formContext(form url.Values) *gin.Context {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/submit-mock/1/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ctx.Request = req
	return ctx
}

func TestParseAnswers(t *testing.T) {
	answers, err := parseAnswers(formContext(url.Values{
		"q1":                  {"4"},
		"q2":                  {""},
		"csrfmiddlewaretoken": {"x"},
		"qabc":                {"9"},
	}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(answers) != 1 || answers[1] != 4 {
		t.Fatalf("answers = %v, want map[1:4]", answers)
	}
}

func TestParseAnswersRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		form url.Values
		want error
	}{
		{"same question twice", url.Values{"q1": {"4"}, "q01": {"3"}}, util.ErrDuplicateAnswer},
		{"non numeric option", url.Values{"q1": {"four"}}, util.ErrUnknownOption},
		{"zero option", url.Values{"q1": {"0"}}, util.ErrUnknownOption},
	}
	for _, c := range cases {
		_, err := parseAnswers(formContext(c.form))
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, err, c.want)
		}
		if !errors.Is(err, util.ErrValidation) {
			t.Fatalf("%s: expected a validation error, got %v", c.name, err)
		}
	}
}
