// Package preset models the saved messages a user can pick from a list and
// send without typing them.
package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"autoremote/internal/autoremote"
)

// Preset is either Simple or Advanced.
type Preset interface {
	Caption() string
	Payload() string
	Kind() autoremote.Kind
	isPreset()
}

// Simple is a bare message string; its caption is the message itself.
type Simple struct {
	Message string
}

func (s Simple) Caption() string { return s.Message }
func (s Simple) Payload() string { return s.Message }
func (s Simple) Kind() autoremote.Kind { return autoremote.KindMessage }
func (Simple) isPreset() {}

type Advanced struct {
	Label       string            `json:"caption,omitempty"`
	Message     string            `json:"message"`
	Type        autoremote.Kind   `json:"type,omitempty"`
	ExtraParams map[string]string `json:"extra_params,omitempty"`
}

func (a Advanced) Caption() string {
	if a.Label != "" {
		return a.Label
	}
	return a.Message
}

func (a Advanced) Payload() string { return a.Message }

func (a Advanced) Kind() autoremote.Kind {
	if a.Type == "" {
		return autoremote.KindMessage
	}
	return a.Type
}

func (Advanced) isPreset() {}

// List decodes from a JSON array whose entries are strings or objects.
type List []Preset

func (l *List) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("presets must be a list: %w", err)
	}

	out := make(List, 0, len(raw))
	for i, entry := range raw {
		p, err := decode(entry)
		if err != nil {
			return fmt.Errorf("preset %d: %w", i, err)
		}
		out = append(out, p)
	}

	*l = out
	return nil
}

func (l List) MarshalJSON() ([]byte, error) {
	raw := make([]any, 0, len(l))
	for _, p := range l {
		switch v := p.(type) {
		case Simple:
			raw = append(raw, v.Message)
		case Advanced:
			raw = append(raw, v)
		}
	}
	return json.Marshal(raw)
}

func decode(entry json.RawMessage) (Preset, error) {
	trimmed := bytes.TrimSpace(entry)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty entry")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return nil, fmt.Errorf("empty message")
		}
		return Simple{Message: s}, nil
	case '{':
		var a Advanced
		if err := json.Unmarshal(trimmed, &a); err != nil {
			return nil, err
		}
		if a.Message == "" {
			return nil, fmt.Errorf("message is required")
		}
		if a.Type != "" {
			kind, err := autoremote.ParseKind(string(a.Type))
			if err != nil {
				return nil, err
			}
			a.Type = kind
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unsupported entry %s", trimmed)
	}
}

// Find looks a preset up by caption, case-insensitively.
func (l List) Find(caption string) (Preset, bool) {
	for _, p := range l {
		if strings.EqualFold(p.Caption(), caption) {
			return p, true
		}
	}
	return nil, false
}

func (l List) At(index int) (Preset, error) {
	if index < 0 || index >= len(l) {
		return nil, fmt.Errorf("preset index %d out of range (have %d)", index, len(l))
	}
	return l[index], nil
}
