package mailgun

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

var (
	ErrInvalidSignature = errors.New("signature does not match")
	ErrStaleTimestamp   = errors.New("timestamp outside freshness window")
	ErrReplayedToken    = errors.New("token already seen")
)

// Signature carries the three authentication fields Mailgun attaches to
// every webhook payload. The signature is hex(HMAC-SHA256(timestamp ||
// token)) under the account's webhook signing key.
type Signature struct {
	Timestamp string
	Token     string
	Signature string
}

// TokenStore remembers one-time webhook tokens for replay detection.
// Remember returns false when the token was already present.
type TokenStore interface {
	Remember(ctx context.Context, token string, ttl time.Duration) (bool, error)
}

// Verifier authenticates inbound Mailgun webhooks: signature match,
// timestamp freshness, one-time token.
type Verifier struct {
	signingKey []byte
	window     time.Duration
	tokens     TokenStore
}

// NewVerifier creates a webhook verifier. A nil token store disables
// replay detection; the dedup layer still bounds what a replayed
// payload can do.
func NewVerifier(signingKey string, window time.Duration, tokens TokenStore) *Verifier {
	return &Verifier{
		signingKey: []byte(signingKey),
		window:     window,
		tokens:     tokens,
	}
}

// Verify checks a webhook signature. The comparison is constant time.
// The token store is consulted only after the signature verifies, so an
// unauthenticated caller cannot poison the replay cache. A token store
// outage is logged but does not reject the request.
func (v *Verifier) Verify(ctx context.Context, sig Signature) error {
	mac := hmac.New(sha256.New, v.signingKey)
	mac.Write([]byte(sig.Timestamp + sig.Token))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(sig.Signature)) {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(sig.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: unparseable timestamp %q", ErrStaleTimestamp, sig.Timestamp)
	}

	skew := time.Since(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.window {
		return fmt.Errorf("%w: skew %s exceeds %s", ErrStaleTimestamp, skew.Round(time.Second), v.window)
	}

	if v.tokens != nil {
		fresh, err := v.tokens.Remember(ctx, sig.Token, 2*v.window)
		if err != nil {
			slog.Warn("Token store unavailable, skipping replay check", "error", err)
			return nil
		}
		if !fresh {
			return ErrReplayedToken
		}
	}

	return nil
}
