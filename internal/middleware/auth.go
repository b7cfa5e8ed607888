package middleware

import (
	"fmt"
	"net/http"
	"net/url"

	"viksit_backend/internal/service"
	"viksit_backend/internal/util"
	"viksit_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Session loads the user from the session cookie. Anonymous requests pass
// through; a stale or revoked cookie is cleared.
func Session(auth *service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Log.Debug("Dropping invalid session", zap.Error(err))
			c.SetCookie(cookieName, "", -1, "/", "", auth.Cfg.Session.Secure, true)
			c.Next()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// RequireLogin sends anonymous users to the login page, remembering where
// they were going.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if util.GetUserFromContext(c) == nil {
			c.Redirect(http.StatusFound, "/login/?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectIfAuthenticated keeps logged-in users off the login and register forms.
func RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if util.GetUserFromContext(c) != nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSubscription lets the request through only when the user holds an
// active subscription for courseSlug. Everyone else lands on that course's
// buy page. Must run after RequireLogin.
func RequireSubscription(subs *service.SubscriptionService, courseSlug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			c.Redirect(http.StatusFound, "/login/?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		ok, err := subs.HasActiveSubscription(claims.UserID, courseSlug)
		if err != nil {
			util.InternalErrorPage(c, err)
			c.Abort()
			return
		}
		if !ok {
			course := subs.Course(courseSlug)
			util.RedirectWithFlash(c, util.FlashInfo,
				fmt.Sprintf("You need to purchase the %s course to access this content.", course.Title),
				"/buy_course/"+courseSlug+"/")
			c.Abort()
			return
		}
		c.Next()
	}
}
