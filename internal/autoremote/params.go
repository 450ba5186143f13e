package autoremote

import (
	"net/url"
	"strconv"
)

type Device struct {
	Target   string `json:"target,omitempty"`
	Password string `json:"password,omitempty"`
}

// Config is a snapshot of the user's settings. Zero values mean unset.
type Config struct {
	Key           string
	DefaultSender string
	DefaultTTL    int
	BaseURL       string
	Devices       map[string]Device
}

func (c Config) device(name string) Device {
	if name == "" || c.Devices == nil {
		return Device{}
	}
	return c.Devices[name]
}

// Options carries the explicit arguments of one action. Empty strings and a
// zero TTL are treated as not given.
type Options struct {
	Target      string
	Sender      string
	Password    string
	Device      string
	TTL         int
	CollapseKey string
	Key         string
	BaseURL     string

	// Params holds extra query parameters. They replace resolved values of
	// the same name.
	Params map[string]string
}

type defaults uint8

const (
	defaultDevice defaults = 1 << iota
	defaultSender
	defaultTTL
	defaultKey

	defaultAll = defaultDevice | defaultSender | defaultTTL | defaultKey

	// defaultNoDevice leaves target and password to explicit options.
	defaultNoDevice = defaultSender | defaultTTL | defaultKey
)

// ResolveParams merges opts with cfg. Explicit options win over device
// settings, which win over global defaults. Entries of opts.Params and then
// overlay replace any resolved value for the same name. Empty values are
// never sent.
func ResolveParams(cfg Config, opts Options, overlay url.Values) url.Values {
	return resolve(cfg, opts, overlay, defaultAll)
}

func resolve(cfg Config, opts Options, overlay url.Values, use defaults) url.Values {
	target, password := opts.Target, opts.Password
	if use&defaultDevice != 0 {
		dev := cfg.device(opts.Device)
		if target == "" {
			target = dev.Target
		}
		if password == "" {
			password = dev.Password
		}
	}

	sender := opts.Sender
	if sender == "" && use&defaultSender != 0 {
		sender = cfg.DefaultSender
	}

	ttl := opts.TTL
	if ttl == 0 && use&defaultTTL != 0 {
		ttl = cfg.DefaultTTL
	}

	key := opts.Key
	if key == "" && use&defaultKey != 0 {
		key = cfg.Key
	}

	params := url.Values{}
	setNonEmpty(params, "target", target)
	setNonEmpty(params, "password", password)
	setNonEmpty(params, "sender", sender)
	if ttl > 0 {
		params.Set("ttl", strconv.Itoa(ttl))
	}
	setNonEmpty(params, "key", key)
	setNonEmpty(params, "collapseKey", opts.CollapseKey)

	for name, value := range opts.Params {
		setNonEmpty(params, name, value)
	}

	for name, values := range overlay {
		var kept []string
		for _, v := range values {
			if v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) > 0 {
			params[name] = kept
		}
	}

	return params
}

func setNonEmpty(params url.Values, name, value string) {
	if value != "" {
		params.Set(name, value)
	}
}
