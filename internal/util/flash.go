package util

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "viksit_flash"

const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

type FlashMessage struct {
	Level string `json:"l"`
	Text  string `json:"t"`
}

const flashContextKey = "flashes"

// AddFlash queues a one-shot message. Messages added during a request that
// also renders a page are shown on that page; otherwise they survive one
// redirect in a short-lived cookie.
func AddFlash(c *gin.Context, level, text string) {
	pending := pendingFlashes(c)
	pending = append(pending, FlashMessage{Level: level, Text: text})
	c.Set(flashContextKey, pending)

	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 60, "/", "", false, true)
}

// PopFlashes returns and clears the pending messages.
func PopFlashes(c *gin.Context) []FlashMessage {
	pending := pendingFlashes(c)
	if _, err := c.Cookie(flashCookie); err == nil || len(pending) > 0 {
		c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	}
	c.Set(flashContextKey, []FlashMessage(nil))
	return pending
}

func pendingFlashes(c *gin.Context) []FlashMessage {
	if v, ok := c.Get(flashContextKey); ok {
		if msgs, ok := v.([]FlashMessage); ok {
			return msgs
		}
		return nil
	}

	var msgs []FlashMessage
	if value, err := c.Cookie(flashCookie); err == nil && value != "" {
		if raw, err := base64.RawURLEncoding.DecodeString(value); err == nil {
			_ = json.Unmarshal(raw, &msgs)
		}
	}
	c.Set(flashContextKey, msgs)
	return msgs
}
