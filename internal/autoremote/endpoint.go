package autoremote

import (
	"fmt"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://autoremotejoaomgcd.appspot.com/"

type Kind string

const (
	KindMessage      Kind = "message"
	KindNotification Kind = "notification"
	KindIntent       Kind = "intent"
)

var endpointPaths = map[Kind]string{
	KindMessage:      "sendmessage",
	KindNotification: "sendnotification",
	KindIntent:       "sendintent",
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := endpointPaths[k]; !ok {
		return "", fmt.Errorf("unknown action kind %q", s)
	}
	return k, nil
}

// EndpointURL resolves the fixed path for kind against baseURL using
// standard relative reference rules. An empty baseURL means DefaultBaseURL.
func EndpointURL(kind Kind, baseURL string) (string, error) {
	path, ok := endpointPaths[kind]
	if !ok {
		return "", fmt.Errorf("unknown action kind %q", kind)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	return base.ResolveReference(&url.URL{Path: path}).String(), nil
}

// PersonalURL is the shareable address a device hands out for its key.
func PersonalURL(baseURL, key string) (string, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	q := url.Values{}
	q.Set("key", key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
