package host

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"html/template"
	"strconv"
	"time"
)

// Nonces issues anti-forgery tokens bound to an action, a user and a session.
// A token is valid for the tick it was issued in and the following one, where
// a tick is half of the configured lifetime.
type Nonces struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewNonces creates a nonce issuer. lifetime must be positive.
func NewNonces(secret []byte, lifetime time.Duration) *Nonces {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &Nonces{secret: secret, lifetime: lifetime, now: time.Now}
}

func (n *Nonces) tick() int64 {
	half := int64(n.lifetime / 2)
	if half <= 0 {
		half = 1
	}
	t := n.now().UnixNano()
	return (t + half - 1) / half
}

func (n *Nonces) hash(tick int64, action string, userID uint, session string) string {
	mac := hmac.New(sha256.New, n.secret)
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	mac.Write([]byte{'|'})
	mac.Write([]byte(action))
	mac.Write([]byte{'|'})
	mac.Write([]byte(strconv.FormatUint(uint64(userID), 10)))
	mac.Write([]byte{'|'})
	mac.Write([]byte(session))
	return hex.EncodeToString(mac.Sum(nil))[:20]
}

// Create returns a token for action.
func (n *Nonces) Create(action string, userID uint, session string) string {
	return n.hash(n.tick(), action, userID, session)
}

// Verify returns 1 when nonce was issued in the current tick, 2 when it was
// issued in the previous one, and 0 when it is invalid or expired.
func (n *Nonces) Verify(nonce, action string, userID uint, session string) int {
	if nonce == "" {
		return 0
	}
	tick := n.tick()
	if subtle.ConstantTimeCompare([]byte(n.hash(tick, action, userID, session)), []byte(nonce)) == 1 {
		return 1
	}
	if subtle.ConstantTimeCompare([]byte(n.hash(tick-1, action, userID, session)), []byte(nonce)) == 1 {
		return 2
	}
	return 0
}

// For binds the issuer to one caller.
func (n *Nonces) For(userID uint, session string) NonceBinder {
	return NonceBinder{nonces: n, userID: userID, session: session}
}

// NonceBinder issues and verifies tokens for a single caller.
type NonceBinder struct {
	nonces  *Nonces
	userID  uint
	session string
}

// Create returns a token for action.
func (b NonceBinder) Create(action string) string {
	if b.nonces == nil {
		return ""
	}
	return b.nonces.Create(action, b.userID, b.session)
}

// Verify reports whether nonce is valid for action.
func (b NonceBinder) Verify(nonce, action string) bool {
	if b.nonces == nil {
		return false
	}
	return b.nonces.Verify(nonce, action, b.userID, b.session) > 0
}

// Field renders a hidden input carrying a fresh token for action.
func (b NonceBinder) Field(action, name string) template.HTML {
	return template.HTML(`<input type="hidden" id="` + template.HTMLEscapeString(name) +
		`" name="` + template.HTMLEscapeString(name) +
		`" value="` + template.HTMLEscapeString(b.Create(action)) + `" />`)
}
