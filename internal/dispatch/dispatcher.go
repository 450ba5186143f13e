package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"autoremote/internal/autoremote"
	"autoremote/internal/config"
	"autoremote/internal/preset"
	"autoremote/internal/settings"
	"autoremote/internal/util"
)

// Action is one send request, independent of the endpoint it targets.
type Action struct {
	Kind         autoremote.Kind
	Payload      string
	Notification autoremote.Notification
	Options      autoremote.Options
}

type snapshot struct {
	client  *autoremote.Client
	presets preset.List
}

// Dispatcher owns the current settings snapshot. The snapshot is rebuilt only
// by Reload or after the key is changed.
type Dispatcher struct {
	store      *settings.Store
	env        *config.Config
	clientOpts []autoremote.ClientOption
	logger     *slog.Logger
	current    atomic.Pointer[snapshot]
}

func New(store *settings.Store, env *config.Config, logger *slog.Logger, clientOpts ...autoremote.ClientOption) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		store:      store,
		env:        env,
		clientOpts: append([]autoremote.ClientOption{autoremote.WithLogger(logger)}, clientOpts...),
		logger:     logger,
	}
	if env != nil {
		d.clientOpts = append([]autoremote.ClientOption{autoremote.WithTimeout(env.HTTPTimeout)}, d.clientOpts...)
	}

	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher) Reload() error {
	s, err := d.store.Load()
	if err != nil {
		return util.LogError(d.logger, "Failed to load settings", err)
	}
	s.ApplyEnv(d.env)

	d.current.Store(&snapshot{
		client:  autoremote.NewClient(s.Config(), d.clientOpts...),
		presets: s.Messages,
	})

	d.logger.Debug("Settings loaded", "devices", len(s.Devices), "presets", len(s.Messages), "hasKey", s.Key != "")
	return nil
}

func (d *Dispatcher) Client() *autoremote.Client {
	return d.current.Load().client
}

func (d *Dispatcher) Presets() preset.List {
	return d.current.Load().presets
}

func (d *Dispatcher) Send(ctx context.Context, action Action) (*autoremote.Response, error) {
	client := d.Client()

	var (
		resp *autoremote.Response
		err  error
	)
	switch action.Kind {
	case autoremote.KindMessage:
		resp, err = client.SendMessage(ctx, action.Payload, action.Options)
	case autoremote.KindIntent:
		resp, err = client.SendIntent(ctx, action.Payload, action.Options)
	case autoremote.KindNotification:
		resp, err = client.SendNotification(ctx, action.Payload, action.Notification, action.Options)
	default:
		return nil, fmt.Errorf("unknown action kind %q", action.Kind)
	}

	if err != nil {
		d.logger.Warn("AutoRemote request failed", "kind", action.Kind, "device", action.Options.Device, "error", err)
		return resp, err
	}

	d.logger.Info("AutoRemote "+string(action.Kind)+" sent",
		"device", action.Options.Device,
		"payload", util.Truncate(action.Payload, 40),
		"status", resp.StatusCode)
	return resp, nil
}

// SendPreset sends p with opts. Extra parameters of an advanced preset fill
// the options left empty in opts; the remaining entries are sent as
// notification fields or as additional query parameters.
func (d *Dispatcher) SendPreset(ctx context.Context, p preset.Preset, opts autoremote.Options) (*autoremote.Response, error) {
	action := Action{
		Kind:    p.Kind(),
		Payload: p.Payload(),
		Options: opts,
	}

	if adv, ok := p.(preset.Advanced); ok && len(adv.ExtraParams) > 0 {
		rest, err := applyExtra(&action.Options, adv.ExtraParams)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Caption(), err)
		}
		if action.Kind == autoremote.KindNotification {
			action.Notification.Extra = rest
		} else {
			action.Options.Params = mergeParams(rest, action.Options.Params)
		}
	}

	return d.Send(ctx, action)
}

// applyExtra copies the option entries of extra into the empty fields of
// opts and returns the entries it did not consume.
func applyExtra(opts *autoremote.Options, extra map[string]string) (map[string]string, error) {
	rest := make(map[string]string, len(extra))
	for name, value := range extra {
		switch name {
		case "target":
			fill(&opts.Target, value)
		case "sender":
			fill(&opts.Sender, value)
		case "password":
			fill(&opts.Password, value)
		case "device":
			fill(&opts.Device, value)
		case "collapseKey":
			fill(&opts.CollapseKey, value)
		case "key":
			fill(&opts.Key, value)
		case "baseurl":
			fill(&opts.BaseURL, value)
		case "ttl":
			if value == "" || opts.TTL != 0 {
				continue
			}
			ttl, err := strconv.Atoi(value)
			if err != nil || ttl < 0 {
				return nil, fmt.Errorf("invalid ttl %q", value)
			}
			opts.TTL = ttl
		default:
			rest[name] = value
		}
	}
	return rest, nil
}

func fill(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

// mergeParams returns base with override applied on top.
func mergeParams(base, override map[string]string) map[string]string {
	if len(override) == 0 {
		return base
	}
	out := make(map[string]string, len(base)+len(override))
	for name, value := range base {
		out[name] = value
	}
	for name, value := range override {
		out[name] = value
	}
	return out
}

// SetKeyFromURL extracts the key from rawURL, persists it and reloads. The
// stored key stays inactive while AUTOREMOTE_KEY is set to another value.
func (d *Dispatcher) SetKeyFromURL(ctx context.Context, rawURL string) (string, error) {
	key, err := d.Client().KeyFromURL(ctx, rawURL)
	if err != nil {
		return "", err
	}

	if err := d.store.Set(settings.NameKey, key); err != nil {
		return "", err
	}
	if err := d.store.Persist(); err != nil {
		return "", util.LogError(d.logger, "Failed to persist key", err)
	}
	if err := d.Reload(); err != nil {
		return "", err
	}

	if d.Client().Config().Key != key {
		d.logger.Warn("Stored key is overridden by AUTOREMOTE_KEY; unset it to use the new key")
	}

	d.logger.Debug("AutoRemote key updated", "length", len(key))
	return key, nil
}

func (d *Dispatcher) PersonalURL() (string, error) {
	cfg := d.Client().Config()
	if cfg.Key == "" {
		return "", fmt.Errorf("no AutoRemote key configured")
	}
	return autoremote.PersonalURL(cfg.BaseURL, cfg.Key)
}
