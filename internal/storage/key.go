package storage

import (
	"fmt"
	"strings"
	"time"
)

// keyTimeLayout is fixed-width so keys sharing a keyword sort chronologically.
const keyTimeLayout = "200601021504"

// GenerateKey derives a session key: keyword + "-" + YYYYMMDDHHMM in local
// time. Two sessions with the same keyword in the same minute share a key.
func GenerateKey(keyword string, now time.Time) string {
	return keyword + "-" + now.In(time.Local).Format(keyTimeLayout)
}

// SplitKey reverses GenerateKey. It splits on the last "-" so keywords
// that themselves contain "-" are preserved.
func SplitKey(key string) (string, time.Time, error) {
	i := strings.LastIndex(key, "-")
	if i < 0 {
		return "", time.Time{}, fmt.Errorf("session key %q has no timestamp", key)
	}
	at, err := time.ParseInLocation(keyTimeLayout, key[i+1:], time.Local)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session key %q: %w", key, err)
	}
	return key[:i], at, nil
}

// checkKey rejects a session whose key is not the one derived from its
// keyword and creation time.
func checkKey(sess *Session) error {
	if sess == nil {
		return fmt.Errorf("%w: nil session", ErrPersistFailed)
	}
	if want := GenerateKey(sess.Keyword, sess.CreatedAt); sess.Key != want {
		return fmt.Errorf("%w: session key %q does not match derived key %q", ErrPersistFailed, sess.Key, want)
	}
	return nil
}
