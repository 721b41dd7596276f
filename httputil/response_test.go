package httputil_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matijaslevang/spotminify/config"
	"github.com/matijaslevang/spotminify/httputil"
)

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		status   int
		expected string
	}{
		{
			name:     "error field",
			body:     `{"error":"User does not have permission"}`,
			status:   http.StatusForbidden,
			expected: "User does not have permission",
		},
		{
			name:     "message field",
			body:     `{"message":"Unauthorized"}`,
			status:   http.StatusUnauthorized,
			expected: "Unauthorized",
		},
		{
			name:     "error preferred over message",
			body:     `{"message":"second","error":"first"}`,
			status:   http.StatusBadRequest,
			expected: "first",
		},
		{
			name:     "non string error falls back to body",
			body:     `{"error":{"code":1}}`,
			status:   http.StatusBadRequest,
			expected: `{"error":{"code":1}}`,
		},
		{
			name:     "plain text",
			body:     "bucketType must be 'audio' or 'image'",
			status:   http.StatusBadRequest,
			expected: "bucketType must be 'audio' or 'image'",
		},
		{
			name:     "html page",
			body:     "<html><body>Bad Gateway</body></html>",
			status:   http.StatusBadGateway,
			expected: "Bad Gateway",
		},
		{
			name:     "empty",
			body:     "",
			status:   http.StatusInternalServerError,
			expected: "Internal Server Error",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.expected, httputil.ErrorMessage([]byte(test.body), test.status))
		})
	}
}

func TestReadResponseBody(t *testing.T) {
	t.Parallel()

	resp := &http.Response{Body: io.NopCloser(strings.NewReader(`{"ok":true}`))}
	b, err := httputil.ReadResponseBody(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(b))

	resp = &http.Response{Body: io.NopCloser(strings.NewReader(""))}
	_, err = httputil.ReadResponseBody(resp)
	require.ErrorIs(t, err, httputil.ErrEmptyBody)
}

func TestIsSuccess(t *testing.T) {
	t.Parallel()

	assert.True(t, httputil.IsSuccess(http.StatusOK))
	assert.True(t, httputil.IsSuccess(http.StatusCreated))
	assert.True(t, httputil.IsSuccess(http.StatusNoContent))
	assert.False(t, httputil.IsSuccess(http.StatusMultipleChoices))
	assert.False(t, httputil.IsSuccess(http.StatusForbidden))
}

func TestNewTransport(t *testing.T) {
	t.Parallel()

	rt, err := httputil.NewTransport(config.Proxy{})
	require.NoError(t, err)
	tr, ok := rt.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, tr.Proxy)

	rt, err = httputil.NewTransport(config.Proxy{Host: "127.0.0.1", Port: 1080, Username: "u", Password: "p"})
	require.NoError(t, err)
	tr, ok = rt.(*http.Transport)
	require.True(t, ok)
	assert.Nil(t, tr.Proxy)
	assert.NotNil(t, tr.DialContext)
}
