package autoremote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
}

type fakeAutoRemote struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeAutoRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()})
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	if body == "" {
		body = "OK"
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeAutoRemote) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newTestClient(t *testing.T, fake *fakeAutoRemote) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.BaseURL = srv.URL + "/"
	return NewClient(cfg, WithHTTPClient(srv.Client()))
}

func TestSendMessage_EndToEnd(t *testing.T) {
	fake := &fakeAutoRemote{}
	client := NewClient(Config{}, WithHTTPClient(http.DefaultClient))
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client.cfg = Config{
		Key:     "K1",
		BaseURL: srv.URL + "/",
		Devices: map[string]Device{"bigphone": {Target: "T1", Password: "P1"}},
	}

	resp, err := client.SendMessage(context.Background(), "say=:=Hello world!", Options{Device: "bigphone"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(resp.Body))

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "/sendmessage", reqs[0].Path)
	assert.Equal(t, url.Values{
		"message":  {"say=:=Hello world!"},
		"target":   {"T1"},
		"password": {"P1"},
		"key":      {"K1"},
	}, reqs[0].Query)
}

func TestSendMessage_MissingPayload(t *testing.T) {
	fake := &fakeAutoRemote{}
	client := newTestClient(t, fake)

	_, err := client.SendMessage(context.Background(), "", Options{})
	assert.ErrorIs(t, err, ErrMissingPayload)
	assert.Empty(t, fake.Requests())
}

func TestSendMessage_NoDedup(t *testing.T) {
	fake := &fakeAutoRemote{}
	client := newTestClient(t, fake)

	for i := 0; i < 2; i++ {
		_, err := client.SendMessage(context.Background(), "ping", Options{Device: "bigphone", CollapseKey: "g"})
		require.NoError(t, err)
	}

	reqs := fake.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, reqs[0].Query, reqs[1].Query)
}

func TestSendMessage_BaseURLOverride(t *testing.T) {
	fake := &fakeAutoRemote{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client := NewClient(testConfig(), WithHTTPClient(srv.Client()))
	_, err := client.SendMessage(context.Background(), "hi", Options{BaseURL: srv.URL + "/relay/"})
	require.NoError(t, err)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/relay/sendmessage", reqs[0].Path)
}

func TestSendMessage_Non2xx(t *testing.T) {
	fake := &fakeAutoRemote{status: http.StatusForbidden, body: "bad key"}
	client := newTestClient(t, fake)

	resp, err := client.SendMessage(context.Background(), "hi", Options{})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
	assert.Equal(t, "bad key", reqErr.Body)
	assert.Len(t, fake.Requests(), 1)
}

func TestSendMessage_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL + "/"
	srv.Close()

	client := NewClient(Config{BaseURL: baseURL})
	_, err := client.SendMessage(context.Background(), "hi", Options{})
	require.Error(t, err)
	assert.True(t, IsRequestError(err))
}

func TestSendIntent_DefaultsWithoutDevice(t *testing.T) {
	fake := &fakeAutoRemote{}
	client := newTestClient(t, fake)

	_, err := client.SendIntent(context.Background(), "com.example/.Main", Options{Device: "bigphone"})
	require.NoError(t, err)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/sendintent", reqs[0].Path)
	assert.Equal(t, url.Values{
		"intent": {"com.example/.Main"},
		"sender": {"laptop"},
		"ttl":    {"300"},
		"key":    {"K1"},
	}, reqs[0].Query)
}

func TestSendIntent_MissingPayload(t *testing.T) {
	fake := &fakeAutoRemote{}
	client := newTestClient(t, fake)

	_, err := client.SendIntent(context.Background(), "", Options{})
	assert.ErrorIs(t, err, ErrMissingPayload)
	assert.Empty(t, fake.Requests())
}

func TestSendNotification(t *testing.T) {
	fake := &fakeAutoRemote{}
	client := newTestClient(t, fake)

	notif := Notification{Title: "CI", Text: "green", Extra: map[string]string{"led": "blue"}}
	_, err := client.SendNotification(context.Background(), "open=:=ci", notif, Options{Password: "P9"})
	require.NoError(t, err)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/sendnotification", reqs[0].Path)
	assert.Equal(t, url.Values{
		"title":    {"CI"},
		"text":     {"green"},
		"led":      {"blue"},
		"message":  {"open=:=ci"},
		"password": {"P9"},
		"sender":   {"laptop"},
		"ttl":      {"300"},
		"key":      {"K1"},
	}, reqs[0].Query)
}

func TestSendNotification_WithoutMessage(t *testing.T) {
	fake := &fakeAutoRemote{}
	client := newTestClient(t, fake)

	_, err := client.SendNotification(context.Background(), "", Notification{Text: "x"}, Options{})
	require.NoError(t, err)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.False(t, reqs[0].Query.Has("message"))
	assert.False(t, reqs[0].Query.Has("target"))
	assert.Equal(t, "laptop", reqs[0].Query.Get("sender"))
	assert.Equal(t, "300", reqs[0].Query.Get("ttl"))
}

func TestSendIntent_ExplicitOverridesDefaults(t *testing.T) {
	fake := &fakeAutoRemote{}
	client := newTestClient(t, fake)

	_, err := client.SendIntent(context.Background(), "com.example/.Main", Options{Sender: "desk", TTL: 5, Target: "T7"})
	require.NoError(t, err)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "desk", reqs[0].Query.Get("sender"))
	assert.Equal(t, "5", reqs[0].Query.Get("ttl"))
	assert.Equal(t, "T7", reqs[0].Query.Get("target"))
}

func TestKeyFromURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/?key=ABC123&other=1", http.StatusFound)
	})
	mux.HandleFunc("/repeated", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/?key=first&key=last", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(Config{}, WithHTTPClient(srv.Client()))
	ctx := context.Background()

	key, err := client.KeyFromURL(ctx, srv.URL+"/short")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", key)

	key, err = client.KeyFromURL(ctx, srv.URL+"/?key=ABC123&other=1")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", key)

	key, err = client.KeyFromURL(ctx, srv.URL+"/repeated")
	require.NoError(t, err)
	assert.Equal(t, "last", key)

	_, err = client.KeyFromURL(ctx, srv.URL+"/?other=1")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	var notFound *KeyNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Contains(t, notFound.URL, srv.URL)
}

func TestKeyFromURL_InvalidInput(t *testing.T) {
	client := NewClient(Config{})

	for _, raw := range []string{"", "   ", "not a url", "/relative?key=x"} {
		_, err := client.KeyFromURL(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}
