package session

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ExpiresAt reads the exp claim of a JWT without verifying its signature.
// A token without an exp claim yields the zero time.
func ExpiresAt(token string) (time.Time, error) {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("unexpected token format: %d segments", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if nil != err {
		return time.Time{}, fmt.Errorf("decode token payload: %v", err)
	}

	var claims struct {
		ExpiresAt int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); nil != err {
		return time.Time{}, fmt.Errorf("unmarshal token claims: %v", err)
	}

	if claims.ExpiresAt == 0 {
		return time.Time{}, nil
	}

	return time.Unix(claims.ExpiresAt, 0).UTC(), nil
}
