package httputil

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDPassthrough(t *testing.T) {
	r := httptest.NewRequest("GET", "/time/0/sun", nil)
	r.Header.Set(RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", RequestID(r))
}

func TestRequestIDGenerated(t *testing.T) {
	for _, bad := range []string{"", "has space", strings.Repeat("x", 129), "tab\there"} {
		r := httptest.NewRequest("GET", "/", nil)
		if bad != "" {
			r.Header.Set(RequestIDHeader, bad)
		}
		id := RequestID(r)
		parsed, err := uuid.Parse(id)
		require.NoError(t, err, "header %q", bad)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	}
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, RequestIDFrom(context.Background()))
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFrom(ctx))
}
