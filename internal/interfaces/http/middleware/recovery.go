package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai-api/internal/interfaces/http/dto"
	"linkedin-post-ai-api/pkg/errors"
	"linkedin-post-ai-api/pkg/logger"
)

// Recovery 捕获 panic，记录堆栈后返回 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered", fmt.Errorf("%v", rec),
				"route", c.FullPath(),
				"method", c.Request.Method,
				"stack", string(debug.Stack()),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			dto.Abort(c, errors.ErrInternalError)
		}()

		c.Next()
	}
}
