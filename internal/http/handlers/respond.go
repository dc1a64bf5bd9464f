package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every response carries the same envelope the frontend was built against:
// {"error": bool, "message": string, ...payload}.

func respondFailure(ctx *gin.Context, status int, message string, details interface{}) {
	body := gin.H{
		"error":   true,
		"message": message,
	}

	if details != nil {
		body["details"] = details
	}

	ctx.JSON(status, body)
}

func RespondOK(ctx *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{
		"error":   false,
		"message": message,
	}

	for k, v := range payload {
		body[k] = v
	}

	ctx.JSON(status, body)
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	respondFailure(ctx, http.StatusBadRequest, message, details)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	respondFailure(ctx, http.StatusUnauthorized, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	respondFailure(ctx, http.StatusNotFound, message, nil)
}

func RespondConflict(ctx *gin.Context, message string) {
	respondFailure(ctx, http.StatusConflict, message, nil)
}

func RespondTimeout(ctx *gin.Context) {
	respondFailure(ctx, http.StatusGatewayTimeout, "Request timed out.", nil)
}

// RespondInternal reports a generic failure; whatever actually broke stays in
// the logs, never in the response.
func RespondInternal(ctx *gin.Context) {
	respondFailure(ctx, http.StatusInternalServerError, "Server error.", nil)
}
