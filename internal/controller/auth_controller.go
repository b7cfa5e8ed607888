package controller

import (
	"errors"
	"net/http"
	"strings"

	"viksit_backend/internal/config"
	"viksit_backend/internal/service"
	"viksit_backend/internal/util"
	"viksit_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	AuthService *service.AuthService
	Session     config.SessionConfig
}

func NewAuthController(authService *service.AuthService, session config.SessionConfig) *AuthController {
	return &AuthController{AuthService: authService, Session: session}
}

func (c *AuthController) RegisterForm(ctx *gin.Context) {
	util.Render(ctx, http.StatusOK, "register.html", gin.H{"title": "Register"})
}

func (c *AuthController) Register(ctx *gin.Context) {
	var in service.RegisterInput
	if err := ctx.ShouldBind(&in); err != nil {
		c.registerError(ctx, in, "Please fill in every field. Usernames need 3 to 150 characters and passwords at least 8.")
		return
	}

	if _, err := c.AuthService.Register(in); err != nil {
		var verr *util.ValidationError
		if errors.As(err, &verr) {
			c.registerError(ctx, in, verr.Message)
			return
		}
		util.InternalErrorPage(ctx, err)
		return
	}

	util.RedirectWithFlash(ctx, util.FlashSuccess, "Account created successfully! Please log in.", "/login/")
}

func (c *AuthController) registerError(ctx *gin.Context, in service.RegisterInput, message string) {
	util.Render(ctx, http.StatusBadRequest, "register.html", gin.H{
		"title":    "Register",
		"error":    message,
		"username": in.Username,
		"email":    in.Email,
	})
}

func (c *AuthController) LoginForm(ctx *gin.Context) {
	util.Render(ctx, http.StatusOK, "login.html", gin.H{
		"title": "Login",
		"next":  safeNext(ctx.Query("next")),
	})
}

func (c *AuthController) Login(ctx *gin.Context) {
	username := ctx.PostForm("username")
	next := safeNext(ctx.PostForm("next"))

	token, claims, err := c.AuthService.Login(username, ctx.PostForm("password"))
	if err != nil {
		if errors.Is(err, util.ErrAuth) {
			util.Render(ctx, http.StatusUnauthorized, "login.html", gin.H{
				"title":    "Login",
				"error":    "Invalid username or password",
				"username": username,
				"next":     next,
			})
			return
		}
		util.InternalErrorPage(ctx, err)
		return
	}

	maxAge := int(claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time).Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Session.CookieName, token, maxAge, "/", "", c.Session.Secure, true)

	logger.Log.Info("User logged in", zap.Uint("userID", claims.UserID))
	ctx.Redirect(http.StatusFound, next)
}

func (c *AuthController) Logout(ctx *gin.Context) {
	if claims := util.GetUserFromContext(ctx); claims != nil {
		if err := c.AuthService.Logout(ctx.Request.Context(), claims); err != nil {
			logger.Log.Warn("Failed to revoke session", zap.Uint("userID", claims.UserID), zap.Error(err))
		}
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Session.CookieName, "", -1, "/", "", c.Session.Secure, true)
	ctx.Redirect(http.StatusFound, "/")
}

// safeNext only allows same-site absolute paths as a post-login target.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
