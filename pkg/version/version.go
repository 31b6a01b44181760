// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package version

// Version is set at build time with -ldflags "-X go.githedgehog.com/rangemerge/pkg/version.Version=..."
var Version = "(devel)"
