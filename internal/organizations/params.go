package organizations

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/igrejaunida/backend/pkg/response"
)

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid organization id")
		c.Abort()
		return 0, false
	}
	return id, true
}
