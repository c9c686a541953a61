// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKeys is a deterministic key pair for signing test interactions.
func testKeys(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	priv := ed25519.NewKeyFromSeed(seed)

	return hex.EncodeToString(priv.Public().(ed25519.PublicKey)), priv
}

func sign(priv ed25519.PrivateKey, timestamp string, body []byte) string {
	return hex.EncodeToString(ed25519.Sign(priv, append([]byte(timestamp), body...)))
}

func TestNewVerifier(t *testing.T) {
	pub, _ := testKeys(t)

	_, err := NewVerifier(pub)
	require.NoError(t, err)

	_, err = NewVerifier("not hex")
	assert.Error(t, err)

	_, err = NewVerifier("abcd")
	assert.ErrorContains(t, err, "32 bytes")
}

func TestVerify(t *testing.T) {
	pub, priv := testKeys(t)
	v, err := NewVerifier(pub)
	require.NoError(t, err)

	body := []byte(`{"type":1}`)
	ts := "1700000000"
	sig := sign(priv, ts, body)

	_, otherPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	tests := []struct {
		name      string
		verifier  *Verifier
		signature string
		timestamp string
		body      []byte
		wantErr   error
	}{
		{"valid", v, sig, ts, body, nil},
		{"missing signature", v, "", ts, body, ErrMissingSignature},
		{"missing timestamp", v, sig, "", body, ErrMissingSignature},
		{"no public key", nil, sig, ts, body, ErrMissingSignature},
		{"tampered body", v, sig, ts, []byte(`{"type":2}`), ErrBadSignature},
		{"other timestamp", v, sig, "1700000001", body, ErrBadSignature},
		{"other key", v, sign(otherPriv, ts, body), ts, body, ErrBadSignature},
		{"not hex", v, "zz", ts, body, ErrBadSignature},
		{"short signature", v, sig[:20], ts, body, ErrBadSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.verifier.Verify(tt.signature, tt.timestamp, tt.body)
			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
