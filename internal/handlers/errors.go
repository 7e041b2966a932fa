package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akylbek/transvoucher-go/apierror"
)

// statusFor maps an SDK error to the gateway's response status.
func statusFor(err error) int {
	switch apierror.KindOf(err) {
	case apierror.KindInvalidRequest:
		if code := apierror.StatusCode(err); code == http.StatusNotFound || code == http.StatusUnprocessableEntity {
			return code
		}
		return http.StatusBadRequest
	case apierror.KindMalformedPayload:
		return http.StatusBadRequest
	case apierror.KindSignatureMismatch:
		return http.StatusUnauthorized
	case apierror.KindAuthentication, apierror.KindAPI, apierror.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if kind := apierror.KindOf(err); kind != "" {
		body["type"] = kind
	}
	c.JSON(statusFor(err), body)
}
