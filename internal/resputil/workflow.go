package resputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/modelmagic/modelmagic/pkg/metrics"
	"github.com/modelmagic/modelmagic/pkg/workflow"
)

// WorkflowError maps a typed engine error onto the response envelope so
// handlers never branch on error kinds themselves.
func WorkflowError(c *gin.Context, err error) {
	switch workflow.KindOf(err) {
	case workflow.KindInvalidTransition:
		metrics.RejectedTransitionsTotal.Inc()
		HTTPError(c, http.StatusConflict, err.Error(), InvalidTransition)
	case workflow.KindUnauthorized:
		metrics.RejectedTransitionsTotal.Inc()
		HTTPError(c, http.StatusForbidden, err.Error(), UserNotAllowed)
	case workflow.KindNotFound:
		HTTPError(c, http.StatusNotFound, err.Error(), NotFound)
	case workflow.KindValidation:
		HTTPError(c, http.StatusBadRequest, err.Error(), InvalidRequest)
	case workflow.KindConflict:
		HTTPError(c, http.StatusConflict, err.Error(), WriteConflict)
	default:
		Error(c, err.Error(), NotSpecified)
	}
}
