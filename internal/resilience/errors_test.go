package resilience

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError_Message(t *testing.T) {
	err := &StatusError{Service: "restcountries", Code: 503, Body: "busy"}
	assert.Equal(t, "restcountries: status 503: busy", err.Error())

	long := &StatusError{Service: "x", Code: 500, Body: strings.Repeat("a", 300)}
	assert.True(t, strings.HasSuffix(long.Error(), "..."))
	assert.Less(t, len(long.Error()), 230)
}

func TestTemporaryStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, TemporaryStatus(code), "%d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		assert.False(t, TemporaryStatus(code), "%d", code)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTemporary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"429", &StatusError{Code: 429}, true},
		{"wrapped 503", fmt.Errorf("fetch: %w", &StatusError{Code: 503}), true},
		{"404", &StatusError{Code: 404}, false},
		{"timeout", timeoutErr{}, true},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"refused", syscall.ECONNREFUSED, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTemporary(tt.err))
		})
	}
}
