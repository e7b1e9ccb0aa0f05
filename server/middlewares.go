package server

import (
	"bytes"
	"context"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/torusresearch/bijson"
)

type contextKey string

const requestBody contextKey = "body"

type jRPCRequest struct {
	Method string `json:"method"`
}

func setContextValue(r *http.Request, key contextKey, val interface{}) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), key, val))
}

func parseBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the body is reread further down the middleware chain
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.WithError(err).Error("could not read request body")
			return
		}
		r = setContextValue(r, requestBody, body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var j jRPCRequest
		if body, ok := r.Context().Value(requestBody).([]byte); ok {
			if err := bijson.Unmarshal(body, &j); err != nil {
				log.WithField("body", string(body)).WithError(err).Debug("could not parse jrpc method from body")
			}
		}
		if j.Method != "" {
			log.WithFields(log.Fields{
				"RemoteAddr": r.RemoteAddr,
				"RequestURI": r.RequestURI,
				"method":     j.Method,
			}).Info("JRPC Method Requested")
		} else {
			log.WithFields(log.Fields{
				"RemoteAddr": r.RemoteAddr,
				"RequestURI": r.RequestURI,
			}).Info("JRPC Method Requested")
		}
		next.ServeHTTP(w, r)
	})
}
