// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrMissingSignature is returned when the signature, the timestamp or
	// the public key is missing.
	ErrMissingSignature = errors.New("missing signature headers or public key")

	// ErrBadSignature is returned when the signature does not verify.
	ErrBadSignature = errors.New("invalid request signature")
)

// Verifier checks interaction signatures against the application public key.
type Verifier struct {
	key ed25519.PublicKey
}

// NewVerifier parses a hex encoded ed25519 public key.
func NewVerifier(publicKeyHex string) (*Verifier, error) {
	raw, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}

	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}

	return &Verifier{key: ed25519.PublicKey(raw)}, nil
}

// Verify checks the detached signature over timestamp followed by body.
// A nil Verifier has no key and rejects everything as missing.
func (v *Verifier) Verify(signatureHex, timestamp string, body []byte) error {
	if v == nil || signatureHex == "" || timestamp == "" {
		return ErrMissingSignature
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ErrBadSignature
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)

	if !ed25519.Verify(v.key, msg, sig) {
		return ErrBadSignature
	}

	return nil
}
