package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"qrattend/internal/apperr"
	"qrattend/internal/httpmiddleware"
)

// statusFor maps an error kind to the HTTP status the caller sees.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is what infrastructure failures look like from outside.
var publicMessage = map[apperr.Kind]string{
	apperr.KindStorage:  "storage unavailable, please try again",
	apperr.KindEncoding: "could not generate QR code",
	apperr.KindInternal: "internal server error",
	apperr.KindUnknown:  "internal server error",
}

// fail writes the structured failure body. Client errors carry their own
// message; anything else is logged and replaced by a generic one.
func fail(c *gin.Context, op string, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal(err, "unexpected error")
	}
	status := statusFor(e.Kind)
	msg := e.Msg
	if !e.Kind.Client() {
		log.Error().Err(err).Str("op", op).Str("request_id", httpmiddleware.GetRequestID(c)).Msg("request failed")
		msg = publicMessage[e.Kind]
		if msg == "" {
			msg = publicMessage[apperr.KindInternal]
		}
	} else {
		log.Debug().Str("op", op).Str("code", e.Code).Msg(e.Msg)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"success":    false,
		"error":      msg,
		"code":       e.Code,
		"request_id": httpmiddleware.GetRequestID(c),
	})
}
