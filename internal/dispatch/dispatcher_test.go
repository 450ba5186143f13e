package dispatch

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"

	"autoremote/internal/autoremote"
	"autoremote/internal/config"
	"autoremote/internal/preset"
	"autoremote/internal/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relay struct {
	mu      sync.Mutex
	paths   []string
	queries []url.Values
}

func (r *relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path == "/short" {
		http.Redirect(w, req, "/?key=NEWKEY", http.StatusFound)
		return
	}
	r.mu.Lock()
	r.paths = append(r.paths, req.URL.Path)
	r.queries = append(r.queries, req.URL.Query())
	r.mu.Unlock()
	_, _ = w.Write([]byte("OK"))
}

func (r *relay) last() (string, url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) == 0 {
		return "", nil
	}
	return r.paths[len(r.paths)-1], r.queries[len(r.queries)-1]
}

func setup(t *testing.T, env *config.Config) (*Dispatcher, *settings.Store, *relay, *httptest.Server) {
	t.Helper()
	return setupWithLogger(t, env, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupWithLogger(t *testing.T, env *config.Config, logger *slog.Logger) (*Dispatcher, *settings.Store, *relay, *httptest.Server) {
	t.Helper()

	rl := &relay{}
	srv := httptest.NewServer(rl)
	t.Cleanup(srv.Close)

	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Set(settings.NameKey, "K1"))
	require.NoError(t, store.Set(settings.NameBaseURL, srv.URL+"/"))
	require.NoError(t, store.Set(settings.NameDevices, map[string]autoremote.Device{
		"bigphone": {Target: "T1", Password: "P1"},
	}))
	require.NoError(t, store.Set(settings.NameMessages, []any{
		"say=:=hi",
		map[string]any{"caption": "Lights", "message": "lights=:=off", "extra_params": map[string]string{"device": "bigphone"}},
		map[string]any{"caption": "Alert", "message": "open=:=ci", "type": "notification", "extra_params": map[string]string{"text": "CI failed"}},
	}))
	require.NoError(t, store.Persist())

	d, err := New(store, env, logger, autoremote.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return d, store, rl, srv
}

func TestSend(t *testing.T) {
	d, _, rl, _ := setup(t, nil)

	_, err := d.Send(context.Background(), Action{
		Kind:    autoremote.KindMessage,
		Payload: "say=:=Hello world!",
		Options: autoremote.Options{Device: "bigphone"},
	})
	require.NoError(t, err)

	path, q := rl.last()
	assert.Equal(t, "/sendmessage", path)
	assert.Equal(t, url.Values{
		"message":  {"say=:=Hello world!"},
		"target":   {"T1"},
		"password": {"P1"},
		"key":      {"K1"},
	}, q)
}

func TestSend_UnknownKind(t *testing.T) {
	d, _, _, _ := setup(t, nil)

	_, err := d.Send(context.Background(), Action{Kind: "snippet", Payload: "x"})
	assert.Error(t, err)
}

func TestSendPreset(t *testing.T) {
	d, _, rl, _ := setup(t, nil)
	presets := d.Presets()
	require.Len(t, presets, 3)

	_, err := d.SendPreset(context.Background(), presets[0], autoremote.Options{})
	require.NoError(t, err)
	path, q := rl.last()
	assert.Equal(t, "/sendmessage", path)
	assert.Equal(t, "say=:=hi", q.Get("message"))

	p, ok := presets.Find("lights")
	require.True(t, ok)
	_, err = d.SendPreset(context.Background(), p, autoremote.Options{})
	require.NoError(t, err)
	_, q = rl.last()
	assert.Equal(t, "T1", q.Get("target"))

	p, ok = presets.Find("Alert")
	require.True(t, ok)
	_, err = d.SendPreset(context.Background(), p, autoremote.Options{})
	require.NoError(t, err)
	path, q = rl.last()
	assert.Equal(t, "/sendnotification", path)
	assert.Equal(t, "CI failed", q.Get("text"))
	assert.Equal(t, "open=:=ci", q.Get("message"))
}

func TestSendPreset_ExtraParams(t *testing.T) {
	d, _, rl, _ := setup(t, nil)

	p := preset.Advanced{
		Label:       "Slow",
		Message:     "say=:=later",
		ExtraParams: map[string]string{"ttl": "60", "device": "bigphone", "via": "panel"},
	}
	_, err := d.SendPreset(context.Background(), p, autoremote.Options{})
	require.NoError(t, err)

	path, q := rl.last()
	assert.Equal(t, "/sendmessage", path)
	assert.Equal(t, url.Values{
		"message":  {"say=:=later"},
		"target":   {"T1"},
		"password": {"P1"},
		"ttl":      {"60"},
		"via":      {"panel"},
		"key":      {"K1"},
	}, q)

	_, err = d.SendPreset(context.Background(), p, autoremote.Options{TTL: 5, Params: map[string]string{"via": "cli"}})
	require.NoError(t, err)
	_, q = rl.last()
	assert.Equal(t, "5", q.Get("ttl"))
	assert.Equal(t, "cli", q.Get("via"))
}

func TestSendPreset_IntentExtraParams(t *testing.T) {
	d, _, rl, _ := setup(t, nil)

	p := preset.Advanced{
		Message:     "com.example/.Main",
		Type:        autoremote.KindIntent,
		ExtraParams: map[string]string{"ttl": "30", "sender": "editor"},
	}
	_, err := d.SendPreset(context.Background(), p, autoremote.Options{})
	require.NoError(t, err)

	path, q := rl.last()
	assert.Equal(t, "/sendintent", path)
	assert.Equal(t, "30", q.Get("ttl"))
	assert.Equal(t, "editor", q.Get("sender"))
}

func TestSendPreset_InvalidTTL(t *testing.T) {
	d, _, rl, _ := setup(t, nil)

	p := preset.Advanced{Message: "m", ExtraParams: map[string]string{"ttl": "soon"}}
	_, err := d.SendPreset(context.Background(), p, autoremote.Options{})
	assert.ErrorContains(t, err, "invalid ttl")

	path, _ := rl.last()
	assert.Empty(t, path)
}

func TestNew_NilLogger(t *testing.T) {
	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	d, err := New(store, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, d.Client().Config().Key)
}

func TestReloadPicksUpChanges(t *testing.T) {
	d, store, _, _ := setup(t, nil)
	assert.Equal(t, "K1", d.Client().Config().Key)

	require.NoError(t, store.Set(settings.NameKey, "K2"))
	require.NoError(t, store.Persist())
	assert.Equal(t, "K1", d.Client().Config().Key)

	require.NoError(t, d.Reload())
	assert.Equal(t, "K2", d.Client().Config().Key)
}

func TestEnvOverridesStoredSettings(t *testing.T) {
	d, _, _, _ := setup(t, &config.Config{Key: "ENVKEY"})
	assert.Equal(t, "ENVKEY", d.Client().Config().Key)
}

func TestSetKeyFromURL(t *testing.T) {
	var logs bytes.Buffer
	d, store, _, srv := setupWithLogger(t, nil, slog.New(slog.NewTextHandler(&logs, nil)))

	key, err := d.SetKeyFromURL(context.Background(), srv.URL+"/short")
	require.NoError(t, err)
	assert.Equal(t, "NEWKEY", key)
	assert.Equal(t, "NEWKEY", d.Client().Config().Key)

	raw, ok, err := store.Get(settings.NameKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `"NEWKEY"`, string(raw))
	assert.NotContains(t, logs.String(), "has been updated")
	assert.NotContains(t, logs.String(), "overridden")
}

func TestSetKeyFromURL_EnvOverrideWarns(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	d, store, _, srv := setupWithLogger(t, &config.Config{Key: "ENVKEY"}, logger)

	key, err := d.SetKeyFromURL(context.Background(), srv.URL+"/short")
	require.NoError(t, err)
	assert.Equal(t, "NEWKEY", key)
	assert.Equal(t, "ENVKEY", d.Client().Config().Key)

	raw, ok, err := store.Get(settings.NameKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `"NEWKEY"`, string(raw))
	assert.Contains(t, logs.String(), "overridden by AUTOREMOTE_KEY")
}

func TestSetKeyFromURL_NoKeyLeavesSettings(t *testing.T) {
	d, _, _, srv := setup(t, nil)

	_, err := d.SetKeyFromURL(context.Background(), srv.URL+"/nokey")
	assert.ErrorIs(t, err, autoremote.ErrKeyNotFound)
	assert.Equal(t, "K1", d.Client().Config().Key)
}

func TestPersonalURL(t *testing.T) {
	d, _, _, srv := setup(t, nil)

	got, err := d.PersonalURL()
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/?key=K1", got)
}

func TestPresetKinds(t *testing.T) {
	d, _, _, _ := setup(t, nil)
	var kinds []autoremote.Kind
	for _, p := range d.Presets() {
		kinds = append(kinds, p.Kind())
	}
	assert.Equal(t, []autoremote.Kind{autoremote.KindMessage, autoremote.KindMessage, autoremote.KindNotification}, kinds)
	_, isSimple := d.Presets()[0].(preset.Simple)
	assert.True(t, isSimple)
}
