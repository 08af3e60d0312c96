// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package revision

// Gate is a presence predicate for one field. Every non-zero bound
// must hold for the gate to allow a revision:
//
//   - MinVersion / MaxVersion bound the head version (Max is exclusive).
//   - MinSubVersion / MaxSubVersion bound the sub-version (Max is
//     exclusive).
//   - Branch, when non-zero, requires that branch id with a branch
//     revision of at least MinBranchRevision.
//
// The zero Gate allows every revision.
type Gate struct {
	MinVersion        int
	MaxVersion        int
	MinSubVersion     int
	MaxSubVersion     int
	Branch            Branch
	MinBranchRevision int
}

// Allows reports whether the field guarded by g is present at r.
func (g Gate) Allows(r Revision) bool {
	if g.MinVersion != 0 && r.Version() < g.MinVersion {
		return false
	}
	if g.MaxVersion != 0 && r.Version() >= g.MaxVersion {
		return false
	}
	if g.MinSubVersion != 0 && r.SubVersion() < g.MinSubVersion {
		return false
	}
	if g.MaxSubVersion != 0 && r.SubVersion() >= g.MaxSubVersion {
		return false
	}
	if g.Branch != BranchNone && !r.Has(g.Branch, g.MinBranchRevision) {
		return false
	}
	return true
}

// AnyGate allows a revision when any of its member gates does. An empty
// AnyGate allows nothing.
type AnyGate []Gate

// Allows reports whether any member gate allows r.
func (gates AnyGate) Allows(r Revision) bool {
	for _, gate := range gates {
		if gate.Allows(r) {
			return true
		}
	}
	return false
}

// Since is shorthand for a gate on a minimum head version.
func Since(version int) Gate {
	return Gate{MinVersion: version}
}

// Before is shorthand for a gate on an exclusive maximum head version.
func Before(version int) Gate {
	return Gate{MaxVersion: version}
}

// SinceSub is shorthand for a gate on a minimum sub-version.
func SinceSub(subVersion int) Gate {
	return Gate{MinSubVersion: subVersion}
}

// OnBranch is shorthand for a gate on a branch revision.
func OnBranch(branch Branch, minRevision int) Gate {
	return Gate{Branch: branch, MinBranchRevision: minRevision}
}
