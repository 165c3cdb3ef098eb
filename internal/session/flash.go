package session

import "strings"

// Kind classifies notice presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notice is a one-time message shown on the next rendered page.
type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func NoticeSuccess(msg string) Notice { return Notice{Kind: KindSuccess, Message: msg} }
func NoticeInfo(msg string) Notice    { return Notice{Kind: KindInfo, Message: msg} }
func NoticeWarning(msg string) Notice { return Notice{Kind: KindWarning, Message: msg} }
func NoticeError(msg string) Notice   { return Notice{Kind: KindError, Message: msg} }

// maxNotices bounds the queue; the oldest notices are dropped first.
const maxNotices = 8

func normalizeNotice(n Notice) (Notice, bool) {
	n.Message = strings.TrimSpace(n.Message)
	if n.Message == "" {
		return Notice{}, false
	}
	switch n.Kind {
	case KindSuccess, KindInfo, KindWarning, KindError:
	default:
		n.Kind = KindInfo
	}
	return n, true
}

// PushNotice queues a notice, dropping the oldest beyond the cap.
func (d *Data) PushNotice(n Notice) {
	n, ok := normalizeNotice(n)
	if !ok {
		return
	}
	d.Notices = append(d.Notices, n)
	if over := len(d.Notices) - maxNotices; over > 0 {
		d.Notices = d.Notices[over:]
	}
}

// DrainNotices returns and clears queued notices.
func (d *Data) DrainNotices() []Notice {
	out := d.Notices
	d.Notices = nil
	return out
}
