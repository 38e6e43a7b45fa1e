package mailgun

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"
)

const testSigningKey = "key-testsigningkey"

func signedPayload(token string, timestamp int64) Signature {
	ts := strconv.FormatInt(timestamp, 10)
	mac := hmac.New(sha256.New, []byte(testSigningKey))
	mac.Write([]byte(ts + token))

	return Signature{
		Timestamp: ts,
		Token:     token,
		Signature: hex.EncodeToString(mac.Sum(nil)),
	}
}

type fakeTokenStore struct {
	seen map[string]bool
	err  error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{seen: make(map[string]bool)}
}

func (s *fakeTokenStore) Remember(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen[token] {
		return false, nil
	}
	s.seen[token] = true
	return true, nil
}

func TestVerifyValidSignature(t *testing.T) {
	v := NewVerifier(testSigningKey, 5*time.Minute, newFakeTokenStore())

	sig := signedPayload("token-1", time.Now().Unix())
	if err := v.Verify(context.Background(), sig); err != nil {
		t.Fatalf("Expected valid signature to verify, got: %v", err)
	}
}

func TestVerifyInvalidSignature(t *testing.T) {
	store := newFakeTokenStore()
	v := NewVerifier(testSigningKey, 5*time.Minute, store)

	sig := signedPayload("token-1", time.Now().Unix())
	sig.Signature = "0000" + sig.Signature[4:]

	err := v.Verify(context.Background(), sig)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("Expected ErrInvalidSignature, got: %v", err)
	}

	// A failed signature must not reach the token store
	if len(store.seen) != 0 {
		t.Error("Expected token store to stay untouched on signature failure")
	}
}

func TestVerifyStaleTimestamp(t *testing.T) {
	v := NewVerifier(testSigningKey, 5*time.Minute, newFakeTokenStore())

	sig := signedPayload("token-1", time.Now().Add(-time.Hour).Unix())
	if err := v.Verify(context.Background(), sig); !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("Expected ErrStaleTimestamp for old timestamp, got: %v", err)
	}

	sig = signedPayload("token-2", time.Now().Add(time.Hour).Unix())
	if err := v.Verify(context.Background(), sig); !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("Expected ErrStaleTimestamp for future timestamp, got: %v", err)
	}
}

func TestVerifyUnparseableTimestamp(t *testing.T) {
	v := NewVerifier(testSigningKey, 5*time.Minute, newFakeTokenStore())

	ts := "not-a-number"
	mac := hmac.New(sha256.New, []byte(testSigningKey))
	mac.Write([]byte(ts + "token-1"))
	sig := Signature{
		Timestamp: ts,
		Token:     "token-1",
		Signature: hex.EncodeToString(mac.Sum(nil)),
	}

	if err := v.Verify(context.Background(), sig); !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("Expected ErrStaleTimestamp, got: %v", err)
	}
}

func TestVerifyReplayedToken(t *testing.T) {
	v := NewVerifier(testSigningKey, 5*time.Minute, newFakeTokenStore())

	sig := signedPayload("token-1", time.Now().Unix())
	if err := v.Verify(context.Background(), sig); err != nil {
		t.Fatalf("Expected first delivery to verify, got: %v", err)
	}

	sig = signedPayload("token-1", time.Now().Unix())
	if err := v.Verify(context.Background(), sig); !errors.Is(err, ErrReplayedToken) {
		t.Fatalf("Expected ErrReplayedToken on redelivery, got: %v", err)
	}
}

func TestVerifyTokenStoreOutage(t *testing.T) {
	store := newFakeTokenStore()
	store.err = fmt.Errorf("connection refused")
	v := NewVerifier(testSigningKey, 5*time.Minute, store)

	sig := signedPayload("token-1", time.Now().Unix())
	if err := v.Verify(context.Background(), sig); err != nil {
		t.Fatalf("Expected store outage to be tolerated, got: %v", err)
	}
}

func TestVerifyWithoutTokenStore(t *testing.T) {
	v := NewVerifier(testSigningKey, 5*time.Minute, nil)

	sig := signedPayload("token-1", time.Now().Unix())
	if err := v.Verify(context.Background(), sig); err != nil {
		t.Fatalf("Expected verification without a store to pass, got: %v", err)
	}
}
