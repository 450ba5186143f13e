package autoremote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		baseURL string
		want    string
	}{
		{"default base", KindMessage, "", "https://autoremotejoaomgcd.appspot.com/sendmessage"},
		{"custom base", KindMessage, "http://x/", "http://x/sendmessage"},
		{"notification", KindNotification, "http://x/", "http://x/sendnotification"},
		{"intent", KindIntent, "http://x/", "http://x/sendintent"},
		{"base without trailing slash replaces last segment", KindMessage, "http://x/api", "http://x/sendmessage"},
		{"base directory keeps path", KindIntent, "http://x/api/", "http://x/api/sendintent"},
		{"host only", KindMessage, "http://127.0.0.1:8080", "http://127.0.0.1:8080/sendmessage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EndpointURL(tt.kind, tt.baseURL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEndpointURL_UnknownKind(t *testing.T) {
	_, err := EndpointURL(Kind("sms"), "")
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Notification ")
	require.NoError(t, err)
	assert.Equal(t, KindNotification, k)

	_, err = ParseKind("snippet")
	assert.Error(t, err)
}

func TestPersonalURL(t *testing.T) {
	got, err := PersonalURL("", "ABC 123")
	require.NoError(t, err)
	assert.Equal(t, "https://autoremotejoaomgcd.appspot.com/?key=ABC+123", got)
}
