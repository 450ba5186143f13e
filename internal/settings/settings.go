package settings

import (
	"encoding/json"
	"fmt"

	"autoremote/internal/autoremote"
	"autoremote/internal/config"
	"autoremote/internal/preset"
)

const (
	NameKey           = "autoremote_key"
	NameDefaultSender = "autoremote_default_sender"
	NameDevices       = "autoremote_devices"
	NameDefaultTTL    = "autoremote_default_ttl"
	NameBaseURL       = "autoremote_baseurl"
	NameMessages      = "autoremote_messages"
)

var knownNames = []string{
	NameKey,
	NameDefaultSender,
	NameDevices,
	NameDefaultTTL,
	NameBaseURL,
	NameMessages,
}

type Settings struct {
	Key           string                       `json:"autoremote_key,omitempty"`
	DefaultSender string                       `json:"autoremote_default_sender,omitempty"`
	Devices       map[string]autoremote.Device `json:"autoremote_devices,omitempty"`
	DefaultTTL    int                          `json:"autoremote_default_ttl,omitempty"`
	BaseURL       string                       `json:"autoremote_baseurl,omitempty"`
	Messages      preset.List                  `json:"autoremote_messages,omitempty"`
}

func (s *Settings) Config() autoremote.Config {
	devices := make(map[string]autoremote.Device, len(s.Devices))
	for name, d := range s.Devices {
		devices[name] = d
	}
	return autoremote.Config{
		Key:           s.Key,
		DefaultSender: s.DefaultSender,
		DefaultTTL:    s.DefaultTTL,
		BaseURL:       s.BaseURL,
		Devices:       devices,
	}
}

// ApplyEnv lets environment values win over stored ones.
func (s *Settings) ApplyEnv(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.Key != "" {
		s.Key = cfg.Key
	}
	if cfg.DefaultSender != "" {
		s.DefaultSender = cfg.DefaultSender
	}
	if cfg.DefaultTTL > 0 {
		s.DefaultTTL = cfg.DefaultTTL
	}
	if cfg.BaseURL != "" {
		s.BaseURL = cfg.BaseURL
	}
}

func (s *Settings) apply(name string, raw json.RawMessage) error {
	var err error
	switch name {
	case NameKey:
		err = json.Unmarshal(raw, &s.Key)
	case NameDefaultSender:
		err = json.Unmarshal(raw, &s.DefaultSender)
	case NameDevices:
		err = json.Unmarshal(raw, &s.Devices)
	case NameDefaultTTL:
		err = json.Unmarshal(raw, &s.DefaultTTL)
		if err == nil && s.DefaultTTL < 0 {
			err = fmt.Errorf("must not be negative")
		}
	case NameBaseURL:
		err = json.Unmarshal(raw, &s.BaseURL)
	case NameMessages:
		err = json.Unmarshal(raw, &s.Messages)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return nil
}

func validate(name string, raw json.RawMessage) error {
	var scratch Settings
	return scratch.apply(name, raw)
}
