// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	defer func(commit, dirty, built string) {
		GitCommit, GitDirty, BuildTime = commit, dirty, built
	}(GitCommit, GitDirty, BuildTime)

	GitCommit = "abc1234"
	GitDirty = "true"
	BuildTime = "2026-01-02T03:04:05Z"

	want := Version + " (abc1234-dirty, 2026-01-02T03:04:05Z)"
	if got := Info(); got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
	if full := Full(); !strings.HasPrefix(full, want) || !strings.Contains(full, "Go: ") {
		t.Errorf("Full() = %q", full)
	}
	if Short() != Version {
		t.Errorf("Short() = %q, want %q", Short(), Version)
	}
	if Commit() != "abc1234" {
		t.Errorf("Commit() = %q, want abc1234", Commit())
	}
}
