package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psergee/authd/internal/errcode"
)

// statusFor maps a service error code to the HTTP status it travels under.
func statusFor(code errcode.Code) int {
	switch code {
	case errcode.CodeInvalidToken, errcode.CodeTokenExpired, errcode.CodeLoginFailed:
		return http.StatusUnauthorized
	case errcode.CodeEmailNotVerified, errcode.CodeAccountDisabled:
		return http.StatusForbidden
	case errcode.CodeAlreadyVerified, errcode.CodeEmailAlreadyExists, errcode.CodePasswordReuse:
		return http.StatusConflict
	case errcode.CodeUserNotFound, errcode.CodeResourceNotFound:
		return http.StatusNotFound
	case errcode.CodeEmailSendFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := errcode.CodeOf(err)
	c.JSON(statusFor(code), gin.H{
		"code":    string(code),
		"message": errcode.MessageOf(err),
	})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    "BadRequest",
		"message": err.Error(),
	})
}
