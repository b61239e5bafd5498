package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/notify"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type sendResponse struct {
	Success  bool `json:"success"`
	Response any  `json:"response,omitempty"`
}

func (s *Server) sendNotification(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	}
	if s.gateway == nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Missing OneSignal configuration"})
	}

	var m notify.Message
	if err := json.NewDecoder(c.Request().Body).Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
	}
	if err := m.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing title or body"})
	}

	receipt, err := s.gateway.Deliver(c.Request().Context(), m)
	if err != nil {
		var apiErr *notify.APIError
		if errors.As(err, &apiErr) {
			resp := errorResponse{Error: "OneSignal API error"}
			if len(apiErr.Details) > 0 {
				resp.Details = apiErr.Details
			}
			return c.JSON(apiErr.StatusCode, resp)
		}
		s.logger.Error("error sending notification", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Error sending notification", Details: err.Error()})
	}

	var response any = receipt
	if len(receipt.Raw) > 0 {
		response = receipt.Raw
	}
	return c.JSON(http.StatusOK, sendResponse{Success: true, Response: response})
}

type passStatus struct {
	Version  uint64    `json:"version"`
	Gate     string    `json:"gate"`
	Skipped  bool      `json:"skipped"`
	Deleted  int       `json:"deleted"`
	Updated  int       `json:"updated"`
	Failed   int       `json:"failed"`
	Summary  string    `json:"summary"`
	Finished time.Time `json:"finished"`
}

type statusResponse struct {
	Gate     string                    `json:"gate"`
	Version  uint64                    `json:"version"`
	Counts   map[models.Collection]int `json:"counts"`
	LastPass *passStatus               `json:"lastPass,omitempty"`
}

func (s *Server) apiStatus(c echo.Context) error {
	if s.status == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "Reconciliation is not running"})
	}

	state := s.status.State()
	resp := statusResponse{
		Gate:    s.status.Gate().String(),
		Version: state.Version(),
		Counts:  state.Counts(),
	}

	if last, ok := s.status.Last(); ok {
		resp.LastPass = &passStatus{
			Version:  last.Version,
			Gate:     last.Gate.String(),
			Skipped:  last.Skipped,
			Deleted:  last.Deletes(),
			Updated:  last.Updates(),
			Failed:   last.Failures(),
			Summary:  last.Summary(),
			Finished: last.Finished,
		}
	}
	return c.JSON(http.StatusOK, resp)
}
