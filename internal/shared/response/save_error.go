package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memorial-backend/internal/workflow"
	"memorial-backend/pkg/logger"
)

// SaveFailure maps a save workflow failure onto the response envelope.
// Validation failures carry per-field details so forms can render
// messages next to the fields. Collaborator failures keep their
// underlying cause in the message, the same text that is logged, so
// the client sees what actually went wrong.
func SaveFailure(c *gin.Context, err error) {
	se, ok := workflow.AsSaveError(err)
	if !ok {
		InternalServerError(c, "Save failed")
		return
	}

	switch se.Code {
	case workflow.CodeValidation:
		ErrorWithDetails(c, http.StatusUnprocessableEntity, string(se.Code),
			"Validation failed", se.FieldErrors)
	case workflow.CodeForbidden:
		ErrorResponse(c, http.StatusForbidden, string(se.Code),
			"You do not have permission to edit this")
	case workflow.CodeAuthorizationCheck:
		logger.Error("save authorization check failed", se)
		ErrorResponse(c, http.StatusBadGateway, string(se.Code), se.Error())
	case workflow.CodeTierExceeded:
		ErrorWithDetails(c, http.StatusPaymentRequired, string(se.Code),
			"Your subscription does not cover the requested tier",
			gin.H{"requested": se.Requested, "entitled": se.Entitled})
	case workflow.CodeMediaUpload:
		logger.Error("save media upload failed", se)
		ErrorWithDetails(c, http.StatusBadGateway, string(se.Code),
			se.Error(), gin.H{"slot": se.Slot})
	case workflow.CodePersistence:
		logger.Error("save persistence failed", se)
		ErrorResponse(c, http.StatusBadGateway, string(se.Code), se.Error())
	default:
		InternalServerError(c, "Save failed")
	}
}
