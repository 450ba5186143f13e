package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"autoremote/internal/autoremote"
	"autoremote/internal/dispatch"
	"autoremote/internal/util"
)

type optionsPayload struct {
	Device      string `json:"device"`
	Target      string `json:"target"`
	Sender      string `json:"sender"`
	Password    string `json:"password"`
	TTL         int    `json:"ttl"`
	CollapseKey string `json:"collapseKey"`
	Key         string `json:"key"`
	BaseURL     string `json:"baseurl"`
}

func (p optionsPayload) options() autoremote.Options {
	return autoremote.Options{
		Device:      p.Device,
		Target:      p.Target,
		Sender:      p.Sender,
		Password:    p.Password,
		TTL:         p.TTL,
		CollapseKey: p.CollapseKey,
		Key:         p.Key,
		BaseURL:     p.BaseURL,
	}
}

type sendMessageRequest struct {
	optionsPayload
	Message string `json:"message"`
}

type sendIntentRequest struct {
	optionsPayload
	Intent string `json:"intent"`
}

type sendNotificationRequest struct {
	optionsPayload
	Message      string                  `json:"message"`
	Notification autoremote.Notification `json:"notification"`
}

type sendResponse struct {
	Kind   autoremote.Kind `json:"kind"`
	Status int             `json:"status"`
	Body   string          `json:"body"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.send(w, r, dispatch.Action{
		Kind:    autoremote.KindMessage,
		Payload: req.Message,
		Options: req.options(),
	})
}

func (s *Server) handleSendIntent(w http.ResponseWriter, r *http.Request) {
	var req sendIntentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.send(w, r, dispatch.Action{
		Kind:    autoremote.KindIntent,
		Payload: req.Intent,
		Options: req.options(),
	})
}

func (s *Server) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	var req sendNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.send(w, r, dispatch.Action{
		Kind:         autoremote.KindNotification,
		Payload:      req.Message,
		Notification: req.Notification,
		Options:      req.options(),
	})
}

func (s *Server) send(w http.ResponseWriter, r *http.Request, action dispatch.Action) {
	resp, err := s.dispatcher.Send(r.Context(), action)
	s.writeResult(w, action.Kind, resp, err)
}

func (s *Server) writeResult(w http.ResponseWriter, kind autoremote.Kind, resp *autoremote.Response, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, sendResponse{
		Kind:   kind,
		Status: resp.StatusCode,
		Body:   string(resp.Body),
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var reqErr *autoremote.RequestError
	switch {
	case errors.Is(err, autoremote.ErrMissingPayload):
		util.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, autoremote.ErrInvalidURL), errors.Is(err, autoremote.ErrKeyNotFound):
		util.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.As(err, &reqErr):
		s.logger.Warn("Upstream request failed", "status", reqErr.StatusCode, "error", err)
		util.WriteJSON(w, http.StatusBadGateway, map[string]any{
			"error":  "AutoRemote request failed",
			"status": reqErr.StatusCode,
			"body":   reqErr.Body,
		})
	default:
		util.LogAndError(w, s.logger, "Internal server error", http.StatusInternalServerError, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		util.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return false
	}
	return true
}
