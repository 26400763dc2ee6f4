// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds session tokens in memory that is locked against
// swap, excluded from core dumps, and zeroed on release.
//
// [Buffer] allocates its backing memory outside the Go heap via
// mmap(MAP_ANONYMOUS), pins it with mlock, and marks it with
// madvise(MADV_DONTDUMP). The garbage collector never sees the region,
// so it cannot copy or relocate the token; Close zeroes and unmaps it.
//
// Read the token with [Buffer.Bytes] (a view into the region) or
// [Buffer.String] (a short-lived heap copy for API boundaries such as
// an Authorization header). [Zero] wipes ordinary byte slices that
// briefly carried secret material, such as a just-read session file.
//
// Depends on golang.org/x/sys/unix. No Keyfob-internal dependencies.
package secret
