package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 64 << 10

var ErrEmptyBody = errors.New("unexpected empty response body")

func ReadResponseBody(resp *http.Response) ([]byte, error) {
	b, err := io.ReadAll(resp.Body)
	if nil != err {
		return nil, fmt.Errorf("read response body: %v", err)
	}

	if len(b) == 0 {
		return nil, ErrEmptyBody
	}

	return b, nil
}

// ReadErrorBody reads at most maxErrorBody bytes of a non-success response.
// Read failures are folded into an empty result as the status code already
// carries the failure.
func ReadErrorBody(resp *http.Response) []byte {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return b
}

// ErrorMessage extracts a human readable message from an API error body.
// The content API reports failures as {"error": "..."} and, for some
// gateway-generated responses, as {"message": "..."}.
func ErrorMessage(b []byte, status int) string {
	if gjson.ValidBytes(b) {
		res := gjson.GetManyBytes(b, "error", "message")
		for _, r := range res {
			if r.Type == gjson.String && len(r.Str) > 0 {
				return r.Str
			}
		}
	}

	if s := strings.TrimSpace(string(b)); len(s) > 0 && len(s) <= 200 && !strings.HasPrefix(s, "<") {
		return s
	}

	return http.StatusText(status)
}

func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}

// DrainAndClose discards the rest of the body so the connection can be
// reused, then closes it.
func DrainAndClose(resp *http.Response) error {
	_, _ = io.Copy(io.Discard, resp.Body)
	if err := resp.Body.Close(); nil != err {
		return fmt.Errorf("close response body: %v", err)
	}

	return nil
}
