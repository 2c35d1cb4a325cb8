package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/modelmagic/modelmagic/internal/resputil"
)

// uriID parses the numeric :id path parameter, replying 400 on garbage.
func uriID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		resputil.BadRequestError(c, "invalid id: "+raw)
		return 0, false
	}
	return uint(id), true
}
