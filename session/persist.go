// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keyfob-foundation/keyfob/authclient"
	"github.com/keyfob-foundation/keyfob/lib/secret"
)

// The two persisted entries. They are a pair: saveSession writes both
// or removes both, and loadSession refuses a session where either half
// is missing or malformed.
const (
	tokenFileName    = "session.token"
	identityFileName = "identity.json"
)

// saveSession writes the session token and serialized identity to the
// state directory with owner-only permissions. On any partial failure
// both entries are removed so a later load cannot see half a session.
// The token bytes are zeroed before returning.
func saveSession(stateDir, token string, identity *authclient.Identity) error {
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return fmt.Errorf("creating state dir %s: %w", stateDir, err)
	}

	identityJSON, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshaling identity: %w", err)
	}

	tokenBytes := []byte(token)
	writeError := os.WriteFile(filepath.Join(stateDir, tokenFileName), tokenBytes, 0600)
	if writeError == nil {
		writeError = os.WriteFile(filepath.Join(stateDir, identityFileName), identityJSON, 0600)
	}
	secret.Zero(tokenBytes)

	if writeError != nil {
		clearSession(stateDir)
		return fmt.Errorf("persisting session: %w", writeError)
	}
	return nil
}

// loadSession reads both persisted entries. The token is moved into
// guarded memory and the raw bytes zeroed. Any missing or malformed
// half fails the whole load; the caller is expected to clearSession
// so no partial restore survives.
func loadSession(stateDir string) (*secret.Buffer, *authclient.Identity, error) {
	tokenBytes, err := os.ReadFile(filepath.Join(stateDir, tokenFileName))
	if err != nil {
		return nil, nil, fmt.Errorf("reading session token: %w", err)
	}
	tokenBytes = bytes.TrimSpace(tokenBytes)
	if len(tokenBytes) == 0 {
		return nil, nil, fmt.Errorf("persisted session token is empty")
	}

	identityJSON, err := os.ReadFile(filepath.Join(stateDir, identityFileName))
	if err != nil {
		secret.Zero(tokenBytes)
		return nil, nil, fmt.Errorf("reading identity: %w", err)
	}

	var identity authclient.Identity
	if err := json.Unmarshal(identityJSON, &identity); err != nil {
		secret.Zero(tokenBytes)
		return nil, nil, fmt.Errorf("parsing identity: %w", err)
	}
	if identity.ID == "" || identity.Email == "" {
		secret.Zero(tokenBytes)
		return nil, nil, fmt.Errorf("persisted identity is incomplete")
	}

	token, err := secret.NewFromBytes(tokenBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("protecting session token: %w", err)
	}
	return token, &identity, nil
}

// clearSession removes both persisted entries. Best-effort: a missing
// file is already the desired end state.
func clearSession(stateDir string) {
	os.Remove(filepath.Join(stateDir, tokenFileName))
	os.Remove(filepath.Join(stateDir, identityFileName))
}
