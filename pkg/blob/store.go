package blob

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Store issues time-limited signed URLs for the deliverable object. Reads are
// handed to buyers after an entitlement check; writes only to the admin.
type Store interface {
	SignedReadURL(key string, ttl time.Duration) (string, error)
	SignedWriteURL(key string, ttl time.Duration) (string, error)
}

// HMACStore signs URLs with a shared secret. The file host verifies the same
// signature before serving or accepting the object.
type HMACStore struct {
	baseURL string
	secret  []byte
	now     func() time.Time
}

// NewHMACStore creates a store rooted at baseURL.
func NewHMACStore(baseURL, secret string) *HMACStore {
	return &HMACStore{baseURL: baseURL, secret: []byte(secret), now: time.Now}
}

func (s *HMACStore) SignedReadURL(key string, ttl time.Duration) (string, error) {
	return s.sign("GET", key, ttl)
}

func (s *HMACStore) SignedWriteURL(key string, ttl time.Duration) (string, error) {
	return s.sign("PUT", key, ttl)
}

func (s *HMACStore) sign(method, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	expires := s.now().Add(ttl).Unix()
	sig := s.signature(method, key, expires)

	q := url.Values{}
	q.Set("method", method)
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", sig)
	return s.baseURL + "/" + url.PathEscape(key) + "?" + q.Encode(), nil
}

// Verify checks a previously issued signed URL. Used by the file host side of
// the contract; exported so it can be tested against sign.
func (s *HMACStore) Verify(method, key string, expires int64, sig string) bool {
	if s.now().Unix() > expires {
		return false
	}
	expected := s.signature(method, key, expires)
	return hmac.Equal([]byte(expected), []byte(sig))
}

func (s *HMACStore) signature(method, key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%s\n%d", method, key, expires)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
