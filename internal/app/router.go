package app

import (
	"viksit_backend/internal/middleware"
	"viksit_backend/internal/util"
	"viksit_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/healthz", c.health.HealthCheck)

	// 1. public pages
	router.GET("/", c.page.Home)
	router.GET("/exams/", c.page.Exams)
	router.GET("/about/", c.page.Static("about.html", "About"))
	router.GET("/contact/", c.page.Static("contact.html", "Contact"))
	router.GET("/gallery/", c.page.Static("gallery.html", "Gallery"))
	router.GET("/studymaterials/", c.studyMaterial.List)
	router.GET("/logout/", c.auth.Logout)

	// 2. login and registration, only for anonymous users
	guest := router.Group("/")
	guest.Use(middleware.RedirectIfAuthenticated())
	{
		guest.GET("/register/", c.auth.RegisterForm)
		guest.POST("/register/", c.auth.Register)
		guest.GET("/login/", c.auth.LoginForm)
		guest.POST("/login/", c.auth.Login)
	}

	// 3. pages that need a logged-in user
	authed := router.Group("/")
	authed.Use(middleware.RequireLogin())
	{
		authed.GET("/profile/", c.page.Profile)
		authed.GET("/mock/:id/", c.exam.ShowMock)
		authed.GET("/submit-mock/:id/", c.exam.SubmitRedirect)
		authed.POST("/submit-mock/:id/", c.exam.SubmitMock)
		authed.GET("/studymaterials/:id/", c.studyMaterial.Detail)

		authed.GET("/buy_course/:slug/", c.subscription.BuyCourse)
		authed.GET("/subscribe/:slug/", c.subscription.SubscribeRedirect)
		authed.POST("/subscribe/:slug/", c.subscription.Subscribe)
		authed.GET("/subscription-return/:orderId/", c.subscription.Return)

		// 4. course pages behind a paid subscription
		authed.GET("/agriculturequota/",
			middleware.RequireSubscription(s.subscription, "agri_quota"),
			c.page.CoursePage("agri_quota", "agriculture_quota.html"))
		authed.GET("/cuet/",
			middleware.RequireSubscription(s.subscription, "cuet_ug_icar"),
			c.page.CoursePage("cuet_ug_icar", "cuet_ug.html"))
	}

	router.NoRoute(util.NotFoundPage)
}
