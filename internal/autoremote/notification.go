package autoremote

import (
	"net/url"
	"strconv"
)

type NotificationAction struct {
	Action string `json:"action,omitempty"`
	Name   string `json:"name,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

// Notification holds the fields understood by the sendnotification endpoint.
// Fields the service adds later can be passed through Extra.
type Notification struct {
	Title           string `json:"title,omitempty"`
	Text            string `json:"text,omitempty"`
	Sound           string `json:"sound,omitempty"`
	Vibration       string `json:"vibration,omitempty"`
	URL             string `json:"url,omitempty"`
	ID              string `json:"id,omitempty"`
	Action          string `json:"action,omitempty"`
	Icon            string `json:"icon,omitempty"`
	LED             string `json:"led,omitempty"`
	LEDOn           *int   `json:"ledon,omitempty"`
	LEDOff          *int   `json:"ledoff,omitempty"`
	Picture         string `json:"picture,omitempty"`
	Share           bool   `json:"share,omitempty"`
	Persistent      bool   `json:"persistent,omitempty"`
	StatusBarIcon   string `json:"statusbaricon,omitempty"`
	Ticker          string `json:"ticker,omitempty"`
	DismissOnTouch  bool   `json:"dismissontouch,omitempty"`
	Priority        *int   `json:"priority,omitempty"`
	Number          *int   `json:"number,omitempty"`
	ContentInfo     string `json:"contentinfo,omitempty"`
	Subtext         string `json:"subtext,omitempty"`
	MaxProgress     *int   `json:"maxprogress,omitempty"`
	Progress        *int   `json:"progress,omitempty"`
	ActionOnDismiss string `json:"actionondismiss,omitempty"`
	Cancel          bool   `json:"cancel,omitempty"`

	Actions []NotificationAction `json:"actions,omitempty"`

	Extra map[string]string `json:"extra,omitempty"`
}

// Values encodes the set fields as query parameters. At most three actions
// are supported by the service; any beyond that are dropped.
func (n Notification) Values() url.Values {
	v := url.Values{}

	setNonEmpty(v, "title", n.Title)
	setNonEmpty(v, "text", n.Text)
	setNonEmpty(v, "sound", n.Sound)
	setNonEmpty(v, "vibration", n.Vibration)
	setNonEmpty(v, "url", n.URL)
	setNonEmpty(v, "id", n.ID)
	setNonEmpty(v, "action", n.Action)
	setNonEmpty(v, "icon", n.Icon)
	setNonEmpty(v, "led", n.LED)
	setInt(v, "ledon", n.LEDOn)
	setInt(v, "ledoff", n.LEDOff)
	setNonEmpty(v, "picture", n.Picture)
	setBool(v, "share", n.Share)
	setBool(v, "persistent", n.Persistent)
	setNonEmpty(v, "statusbaricon", n.StatusBarIcon)
	setNonEmpty(v, "ticker", n.Ticker)
	setBool(v, "dismissontouch", n.DismissOnTouch)
	setInt(v, "priority", n.Priority)
	setInt(v, "number", n.Number)
	setNonEmpty(v, "contentinfo", n.ContentInfo)
	setNonEmpty(v, "subtext", n.Subtext)
	setInt(v, "maxprogress", n.MaxProgress)
	setInt(v, "progress", n.Progress)
	setNonEmpty(v, "actionondismiss", n.ActionOnDismiss)
	setBool(v, "cancel", n.Cancel)

	for i, a := range n.Actions {
		if i >= 3 {
			break
		}
		prefix := "action" + strconv.Itoa(i+1)
		setNonEmpty(v, prefix, a.Action)
		setNonEmpty(v, prefix+"name", a.Name)
		setNonEmpty(v, prefix+"icon", a.Icon)
	}

	for name, value := range n.Extra {
		if _, known := v[name]; known {
			continue
		}
		setNonEmpty(v, name, value)
	}

	return v
}

func setInt(v url.Values, name string, value *int) {
	if value != nil {
		v.Set(name, strconv.Itoa(*value))
	}
}

func setBool(v url.Values, name string, value bool) {
	if value {
		v.Set(name, "true")
	}
}
