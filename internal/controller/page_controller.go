package controller

import (
	"net/http"

	"viksit_backend/internal/service"
	"viksit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// PageController serves the informational pages, the profile and the gated
// course pages.
type PageController struct {
	AuthService          *service.AuthService
	ExamService          *service.ExamService
	StudyMaterialService *service.StudyMaterialService
	SubscriptionService  *service.SubscriptionService
}

func NewPageController(auth *service.AuthService, exams *service.ExamService, materials *service.StudyMaterialService, subs *service.SubscriptionService) *PageController {
	return &PageController{
		AuthService:          auth,
		ExamService:          exams,
		StudyMaterialService: materials,
		SubscriptionService:  subs,
	}
}

func (c *PageController) Home(ctx *gin.Context) {
	var purchased []string
	if claims := util.GetUserFromContext(ctx); claims != nil {
		slugs, err := c.SubscriptionService.ActiveCourseSlugs(claims.UserID)
		if err != nil {
			util.InternalErrorPage(ctx, err)
			return
		}
		purchased = slugs
	}
	util.Render(ctx, http.StatusOK, "index.html", gin.H{
		"title":     "Home",
		"purchased": purchased,
	})
}

func (c *PageController) Exams(ctx *gin.Context) {
	mocks, err := c.ExamService.ListMocks("")
	if err != nil {
		util.InternalErrorPage(ctx, err)
		return
	}
	util.Render(ctx, http.StatusOK, "exams.html", gin.H{"title": "Exams", "mocks": mocks})
}

// Static renders a page with no data.
func (c *PageController) Static(name, title string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		util.Render(ctx, http.StatusOK, name, gin.H{"title": title})
	}
}

func (c *PageController) Profile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	user, err := c.AuthService.CurrentUser(claims)
	if err != nil {
		util.InternalErrorPage(ctx, err)
		return
	}
	results, err := c.ExamService.ListResults(claims.UserID)
	if err != nil {
		util.InternalErrorPage(ctx, err)
		return
	}
	subs, err := c.SubscriptionService.ActiveSubscriptions(claims.UserID)
	if err != nil {
		util.InternalErrorPage(ctx, err)
		return
	}

	courses := make([]gin.H, 0, len(subs))
	for _, s := range subs {
		courses = append(courses, gin.H{
			"subscription": s,
			"course":       c.SubscriptionService.Course(s.CourseSlug),
		})
	}

	util.Render(ctx, http.StatusOK, "profile.html", gin.H{
		"title":     "Profile",
		"user":      user,
		"results":   results,
		"purchased": courses,
	})
}

// CoursePage renders a gated course page listing the course's mocks, study
// materials and the authors. Access is checked by middleware.
func (c *PageController) CoursePage(courseSlug, name string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		mocks, err := c.ExamService.ListMocks(courseSlug)
		if err != nil {
			util.InternalErrorPage(ctx, err)
			return
		}
		materials, err := c.StudyMaterialService.ListMaterials(courseSlug)
		if err != nil {
			util.InternalErrorPage(ctx, err)
			return
		}
		authors, err := c.StudyMaterialService.ListAuthors(ctx.Request.Context())
		if err != nil {
			util.InternalErrorPage(ctx, err)
			return
		}

		util.Render(ctx, http.StatusOK, name, gin.H{
			"title":          c.SubscriptionService.Course(courseSlug).Title,
			"mocks":          mocks,
			"studyMaterials": materials,
			"authors":        authors,
		})
	}
}
