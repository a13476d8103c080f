package ado

import (
	"errors"
	"net/http"
	"net/http/cookiejar"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TimeoutKeepsCustomHTTPClient(t *testing.T) {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	errStop := errors.New("stop")
	transport := &http.Transport{}

	tests := []struct {
		name string
		opts func(hc *http.Client) []Option
	}{
		{
			name: "timeout first",
			opts: func(hc *http.Client) []Option { return []Option{WithTimeout(5 * time.Second), WithHTTPClient(hc)} },
		},
		{
			name: "http client first",
			opts: func(hc *http.Client) []Option { return []Option{WithHTTPClient(hc), WithTimeout(5 * time.Second)} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := &http.Client{
				Transport:     transport,
				Jar:           jar,
				CheckRedirect: func(*http.Request, []*http.Request) error { return errStop },
			}
			client := New(tt.opts(hc)...)

			assert.Equal(t, 5*time.Second, client.http.Timeout)
			assert.Same(t, transport, client.http.Transport)
			assert.Equal(t, jar, client.http.Jar)
			require.NotNil(t, client.http.CheckRedirect)
			assert.ErrorIs(t, client.http.CheckRedirect(nil, nil), errStop)
			assert.Zero(t, hc.Timeout, "caller's client must not be mutated")
		})
	}
}

func TestNew_ZeroTimeoutKeepsClientSetting(t *testing.T) {
	hc := &http.Client{Timeout: 3 * time.Second}
	client := New(WithHTTPClient(hc), WithTimeout(0))
	assert.Same(t, hc, client.http)
	assert.Equal(t, 3*time.Second, client.http.Timeout)
}
