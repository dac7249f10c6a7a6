package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/sunshop/internal/transport/api/middlewares"
)

// getUserIDFromContext достает id текущего юзера, записанный auth-мидлварой.
// Ноль означает неавторизованный запрос - до хендлеров за auth-группой такой
// запрос не доходит.
func getUserIDFromContext(c *gin.Context) int64 {
	return c.GetInt64(middlewares.CurrentUserIDKey)
}
