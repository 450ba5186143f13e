package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"autoremote/internal/autoremote"
	"autoremote/internal/preset"
	"autoremote/internal/qr"
	"autoremote/internal/util"

	"github.com/go-chi/chi/v5"
)

var errPresetNotFound = errors.New("preset not found")

type presetEntry struct {
	Index   int             `json:"index"`
	Caption string          `json:"caption"`
	Kind    autoremote.Kind `json:"kind"`
	Message string          `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, map[string]any{
		"version": s.version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
		"hasKey":  s.dispatcher.Client().Config().Key != "",
	})
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets := s.dispatcher.Presets()
	entries := make([]presetEntry, 0, len(presets))
	for i, p := range presets {
		entries = append(entries, presetEntry{
			Index:   i,
			Caption: p.Caption(),
			Kind:    p.Kind(),
			Message: p.Payload(),
		})
	}
	util.WriteJSON(w, http.StatusOK, entries)
}

// handleSendPreset accepts either the preset index or its caption. The body
// is optional and holds the same options as the send endpoints.
func (s *Server) handleSendPreset(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	presets := s.dispatcher.Presets()

	var (
		p   preset.Preset
		err error
	)
	if i, convErr := strconv.Atoi(ref); convErr == nil {
		p, err = presets.At(i)
	} else if found, ok := presets.Find(ref); ok {
		p = found
	} else {
		err = errPresetNotFound
	}
	if err != nil {
		util.WriteJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	var opts optionsPayload
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &opts) {
			return
		}
	}

	resp, err := s.dispatcher.SendPreset(r.Context(), p, opts.options())
	s.writeResult(w, p.Kind(), resp, err)
}

type setKeyRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleSetKey(w http.ResponseWriter, r *http.Request) {
	var req setKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	key, err := s.dispatcher.SetKeyFromURL(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Your AutoRemote key has been updated (" + strconv.Itoa(len(key)) + ")",
		"key":     util.MaskSecret(key),
	})
}

func (s *Server) handleKeyQR(w http.ResponseWriter, r *http.Request) {
	personal, err := s.dispatcher.PersonalURL()
	if err != nil {
		util.WriteJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	img, err := qr.PNG(personal)
	if err != nil {
		util.LogAndError(w, s.logger, "Failed to render QR code", http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img) //nolint:errcheck
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatcher.Reload(); err != nil {
		util.LogAndError(w, s.logger, "Failed to reload settings", http.StatusInternalServerError, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]any{
		"presets": len(s.dispatcher.Presets()),
	})
}
