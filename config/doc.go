// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for Keyfob.
//
// Configuration is loaded from a single file specified by either the
// KEYFOB_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search; with neither set, [Default] supplies the development
// defaults. This keeps configuration deterministic with no hidden
// overrides.
//
// Variable expansion is performed on the state directory after
// loading: ${HOME} and ${VAR:-default} patterns are expanded. No
// other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- server URL, state dir, and the timing knobs for the
//     code validity window, resend cooldown, and low-time threshold
//   - [Default] -- development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other Keyfob packages.
package config
