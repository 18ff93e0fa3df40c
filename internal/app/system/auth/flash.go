package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Flash kinds. They match the alert styles in the layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// AddFlash queues a message for the next page. Flashes live in the session
// cookie as "kind:message" strings so no gob registration is needed.
func (sm *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Debug("session decode failed while adding flash", zap.Error(err))
	}
	sess.AddFlash(kind + ":" + message)
	if err := sess.Save(r, w); err != nil {
		sm.log.Warn("failed to save flash", zap.Error(err))
	}
}

// Flashes pops queued messages. It must run before the response body is
// written because consuming flashes rewrites the cookie.
func (sm *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, err := sm.GetSession(r)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		sm.log.Warn("failed to clear flashes", zap.Error(err))
	}

	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		kind, msg, found := strings.Cut(s, ":")
		if !found {
			kind, msg = FlashInfo, s
		}
		out = append(out, Flash{Kind: kind, Message: msg})
	}
	return out
}
