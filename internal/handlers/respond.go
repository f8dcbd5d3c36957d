package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reintausend/rfs/internal/middleware"
	"github.com/reintausend/rfs/internal/models"
)

const (
	contentTypeJSON   = "application/json; charset=utf-8"
	contentTypeScript = "application/javascript; charset=utf-8"
)

// callbackPattern accepts a JavaScript identifier path such as "cb" or "app.onTop".
var callbackPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

var errInvalidCallback = errors.New("invalid callback name")

// endpoint produces a response payload or an error. serve maps both to the wire.
type endpoint func(c *gin.Context) (any, error)

// serve runs ep and writes its result. Every outcome is HTTP 200; failures are
// reported as {"success":false,"error":...}. When allowCallback is set, a
// callback query parameter wraps the JSON as callback(json).
func serve(log *zap.Logger, allowCallback bool, ep endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		callback := ""
		if allowCallback {
			callback = c.Query("callback")
		}
		if callback != "" && !callbackPattern.MatchString(callback) {
			log.Warn("Rejected callback",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.String("callback", callback))
			writePayload(c, log, "", errorPayload(errInvalidCallback))
			return
		}

		payload, err := ep(c)
		if err != nil {
			logFailure(c, log, err)
			payload = errorPayload(err)
		}
		writePayload(c, log, callback, payload)
	}
}

func errorPayload(err error) models.ErrorResponse {
	return models.ErrorResponse{Success: false, Error: err.Error()}
}

func logFailure(c *gin.Context, log *zap.Logger, err error) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("method", c.Request.Method),
	}
	if errors.Is(err, models.ErrInvalidEvent) {
		log.Warn("Invalid request", fields...)
		return
	}
	log.Error("Request failed", fields...)
}

// encodeJSON marshals v without HTML escaping and without a trailing newline.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writePayload(c *gin.Context, log *zap.Logger, callback string, payload any) {
	body, err := encodeJSON(payload)
	if err != nil {
		log.Error("Failed to encode response", zap.Error(err))
		body = []byte(`{"success":false,"error":"response encoding failed"}`)
	}

	if callback == "" {
		c.Data(http.StatusOK, contentTypeJSON, body)
		return
	}

	out := make([]byte, 0, len(callback)+len(body)+2)
	out = append(out, callback...)
	out = append(out, '(')
	out = append(out, body...)
	out = append(out, ')')
	c.Data(http.StatusOK, contentTypeScript, out)
}
