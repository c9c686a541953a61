// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRoundTripper captures the last request and answers with a fixed body.
type recordingRoundTripper struct {
	lastRequest *http.Request
	body        string
}

func (d *recordingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	d.lastRequest = req

	return &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(d.body)),
		Request:    req,
	}, nil
}

func TestLoggingRoundTripper(t *testing.T) {
	var logBuffer bytes.Buffer

	lt := &LoggingRoundTripper{
		Transport: &recordingRoundTripper{body: "response body"},
		Writer:    &logBuffer,
		DumpBody:  true,
	}

	req, err := http.NewRequest(http.MethodGet, "http://example.com/abc", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bot secret-token")

	_, err = lt.RoundTrip(req)
	require.NoError(t, err)

	logContent := logBuffer.String()
	assert.Contains(t, logContent, "> GET /abc")
	assert.Contains(t, logContent, "< RESPONSE: [")
	assert.Contains(t, logContent, "response body")
	assert.Contains(t, logContent, "[redacted]")
	assert.NotContains(t, logContent, "secret-token")
}

func TestLoggingRoundTripperWithoutWriter(t *testing.T) {
	inner := &recordingRoundTripper{}
	lt := &LoggingRoundTripper{Transport: inner}

	req, err := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	require.NoError(t, err)

	_, err = lt.RoundTrip(req)
	require.NoError(t, err)
	assert.Same(t, req, inner.lastRequest)
}

func TestAppendRequestHeadersRoundTripper(t *testing.T) {
	inner := &recordingRoundTripper{}
	atr := &AppendRequestHeadersRoundTripper{
		Transport: inner,
		Headers: map[string]string{
			"X-Test-Header": "TestValue",
			"Accept":        "application/json",
		},
	}

	req, err := http.NewRequest(http.MethodPost, "http://example.org", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/plain")

	_, err = atr.RoundTrip(req)
	require.NoError(t, err)

	assert.Equal(t, "TestValue", inner.lastRequest.Header.Get("X-Test-Header"))
	assert.Equal(t, "text/plain", inner.lastRequest.Header.Get("Accept"), "caller headers win")
	assert.Empty(t, req.Header.Get("X-Test-Header"), "original request is not mutated")
}

func TestNewClientSetsUserAgent(t *testing.T) {
	var gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(ClientOptions{UserAgent: "livemap/test", Timeout: time.Second})

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "livemap/test", gotUA)
	assert.Equal(t, time.Second, client.Timeout)
}
