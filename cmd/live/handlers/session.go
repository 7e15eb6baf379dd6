package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "session_id"
	sessionCtxKey     = "session_id"
)

// SessionMiddleware 确保每个请求携带会话标识，没有则发一个新cookie
// 会话只是匿名的不透明标识，用于投票去重，不承载认证
func SessionMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		sessionId := string(c.Cookie(SessionCookieName))
		if sessionId == "" {
			sessionId = uuid.New().String()
			c.SetCookie(SessionCookieName, sessionId, 3600*24*365, "/", "", 0, false, true)
		}
		c.Set(sessionCtxKey, sessionId)
		c.Next(ctx)
	}
}

// GetSessionId 取出当前请求的会话标识
func GetSessionId(c *app.RequestContext) string {
	return c.GetString(sessionCtxKey)
}
