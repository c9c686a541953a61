// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils builds the outbound HTTP clients used to talk to
// geocoding providers and the chat platform.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"
)

// ClientOptions configures an outbound client.
type ClientOptions struct {
	// UserAgent identifies the application. Some public APIs (Nominatim)
	// reject requests without one.
	UserAgent string

	// Timeout bounds a whole request, including reading the body.
	Timeout time.Duration

	// Trace receives a dump of every request and response when set.
	Trace io.Writer

	// TraceBody includes bodies in the trace.
	TraceBody bool

	// Transport is the base transport. http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// NewClient returns an http.Client with the header and tracing round
// trippers installed.
func NewClient(opts ClientOptions) *http.Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	var transport http.RoundTripper = &LoggingRoundTripper{
		Writer:    opts.Trace,
		DumpBody:  opts.TraceBody,
		Transport: base,
	}

	if opts.UserAgent != "" {
		transport = &AppendRequestHeadersRoundTripper{
			Headers: map[string]string{
				"User-Agent": opts.UserAgent,
				"Accept":     "application/json",
			},
			Transport: transport,
		}
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}
}

/////////////////////////////////////////
/// RountTrippers

// LoggingRoundTripper adds a very primitive logging to a http transaction.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool
}

// headers whose values never reach the trace.
var redactedHeaders = []string{"authorization:", "x-goog-api-key:"}

// prefix and shorten the dumped lines.
func abbreviate(lines []string, prefix rune) []string {
	const maxLines, maxChars = 256, 512

	if len(lines) > maxLines {
		lines = append(lines[:maxLines], "…")
	}

	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, h := range redactedHeaders {
			if strings.HasPrefix(lower, h) {
				line = line[:len(h)] + " [redacted]"
			}
		}

		if len(line) > maxChars {
			line = line[0:maxChars] + "…"
		}

		lines[i] = fmt.Sprintf("%c %s", prefix, line)
	}

	return lines
}

func (t *LoggingRoundTripper) dumpRequest(req *http.Request) error {
	dump, err := httputil.DumpRequestOut(req, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	lines := abbreviate(strings.Split(string(dump), "\n"), '>')
	lines = append(lines, "")
	_, err = fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

func (t *LoggingRoundTripper) dumpResponse(resp *http.Response, duration time.Duration) error {
	dump, err := httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	lines := abbreviate(strings.Split(string(dump), "\n"), '<')

	if _, err := fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n", duration); err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	lines = append(lines, "")
	_, err = fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Transport.RoundTrip(req)
	}

	if err := t.dumpRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.Writer, "< ERROR: [%v] %v\n", time.Since(start), err)

		return nil, err
	}

	if err := t.dumpResponse(resp, time.Since(start)); err != nil {
		return nil, err
	}

	return resp, nil
}

// AppendRequestHeadersRoundTripper adds headers to the request unless the
// caller already set them.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	return t.Transport.RoundTrip(req)
}
