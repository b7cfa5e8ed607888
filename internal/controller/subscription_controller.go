package controller

import (
	"errors"
	"net/http"

	"viksit_backend/internal/config"
	"viksit_backend/internal/service"
	"viksit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	msgPaymentSuccess = "Payment successful! You now have access to the course."
	msgPaymentRetry   = "Payment failed or pending. Try again."
	msgInitiateFailed = "We could not start the payment. Please try again."
	msgStatusFailed   = "We could not confirm your payment right now. Please reload this page in a moment."
)

type SubscriptionController struct {
	SubscriptionService *service.SubscriptionService
}

func NewSubscriptionController(svc *service.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{SubscriptionService: svc}
}

func buyPath(slug string) string {
	return "/buy_course/" + slug + "/"
}

func (c *SubscriptionController) BuyCourse(ctx *gin.Context) {
	slug := ctx.Param("slug")
	catalog := c.SubscriptionService.Catalog.Get()
	course := catalog.Lookup(slug)

	util.Render(ctx, http.StatusOK, "payment.html", gin.H{
		"title":        "Buy " + course.Title,
		"courseSlug":   slug,
		"course":       course,
		"priceOnline":  course.Online,
		"priceOffline": course.Offline,
	})
}

func (c *SubscriptionController) SubscribeRedirect(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, buyPath(ctx.Param("slug")))
}

func (c *SubscriptionController) Subscribe(ctx *gin.Context) {
	slug := ctx.Param("slug")
	mode := ctx.DefaultPostForm("mode", config.ModeOnline)
	claims := util.GetUserFromContext(ctx)

	started, err := c.SubscriptionService.Initiate(ctx.Request.Context(), claims.UserID, slug, mode)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrValidation):
			util.RedirectWithFlash(ctx, util.FlashError, validationMessage(err), buyPath(slug))
		case errors.Is(err, util.ErrPaymentInitiation):
			util.RedirectWithFlash(ctx, util.FlashError, msgInitiateFailed, buyPath(slug))
		default:
			util.InternalErrorPage(ctx, err)
		}
		return
	}

	util.Render(ctx, http.StatusOK, "pay.html", gin.H{
		"title":       "Complete payment",
		"redirectURL": started.RedirectURL,
		"amount":      started.Subscription.Amount,
		"courseSlug":  slug,
		"course":      started.Course,
	})
}

func (c *SubscriptionController) Return(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	outcome, err := c.SubscriptionService.HandleReturn(ctx.Request.Context(), claims.UserID, ctx.Param("orderId"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotFound):
			util.NotFoundPage(ctx)
		case errors.Is(err, util.ErrPaymentProvider):
			util.Render(ctx, http.StatusBadGateway, "error.html", gin.H{
				"title":   "Payment status unavailable",
				"message": msgStatusFailed,
			})
		default:
			util.InternalErrorPage(ctx, err)
		}
		return
	}

	if !outcome.Paid {
		util.RedirectWithFlash(ctx, util.FlashError, msgPaymentRetry, buyPath(outcome.Subscription.CourseSlug))
		return
	}

	target := outcome.Course.Page
	if target == "" {
		target = "/"
	}
	util.RedirectWithFlash(ctx, util.FlashSuccess, msgPaymentSuccess, target)
}
