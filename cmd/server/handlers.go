// cmd/server/handlers.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/valpere/AttendScrapexter/internal/attendance"
	apperrors "github.com/valpere/AttendScrapexter/internal/errors"
	"github.com/valpere/AttendScrapexter/pkg/api"
)

const maxBodyBytes = 64 << 10

func (s *Server) handleScrapeAttendance(w http.ResponseWriter, r *http.Request) {
	var req api.ScrapeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if !s.scraper.IsBrowserReady() {
		err := apperrors.Newf(apperrors.KindUnavailable, "scrape attendance", "browser not ready")
		writeError(w, r, http.StatusServiceUnavailable, s.messages.UserMessage(err))
		return
	}

	ctx := r.Context()
	if t := s.cfg.Server.RequestTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	result, err := s.scraper.ScrapeAttendance(ctx, req.Username, req.Password)
	if err != nil {
		loggerFrom(r, s.logger).
			WithField("roll_number", req.Username).
			WithField("kind", apperrors.KindOf(err).String()).
			Warnf("scrape failed: %v", err)
		writeError(w, r, s.messages.HTTPStatus(err), s.messages.UserMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBunkCalculator(w http.ResponseWriter, r *http.Request) {
	var in api.BunkRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res, err := attendance.CalculateBunk(in)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("request body is empty")
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		default:
			return fmt.Errorf("invalid JSON body: %v", err)
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeJSON(w, status, api.ErrorResponse{
		Detail:    detail,
		RequestID: requestIDFrom(r.Context()),
	})
}
