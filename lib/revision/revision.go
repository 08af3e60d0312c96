// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package revision

import (
	"fmt"
	"strconv"
	"strings"
)

// Branch identifies a vendor-specific fork of the format. The zero
// value is the mainline.
type Branch uint16

const (
	// BranchNone is the mainline format.
	BranchNone Branch = 0

	// Leerdammer is the "LD" branch, forked from head version 0x272.
	Leerdammer Branch = 0x4c44

	// Double11 is the "D1" handheld branch.
	Double11 Branch = 0x4431
)

// String returns the two-character branch tag, or the hex id for
// branches this package does not name.
func (b Branch) String() string {
	switch b {
	case BranchNone:
		return "none"
	case Leerdammer:
		return "LD"
	case Double11:
		return "D1"
	default:
		return fmt.Sprintf("0x%04x", uint16(b))
	}
}

// Revision is an immutable format revision. Construct with [New],
// [NewBranched] or [FromDescriptor].
type Revision struct {
	// Head is the full head word: sub-version in the high 16 bits,
	// head version in the low 16 bits.
	Head uint32

	// BranchID selects a vendor branch. Zero is the mainline.
	BranchID uint16

	// BranchRevision is the revision within BranchID.
	BranchRevision uint16
}

// New returns a mainline revision for the given head word.
func New(head uint32) Revision {
	return Revision{Head: head}
}

// NewBranched returns a revision on a vendor branch.
func NewBranched(head uint32, branchID, branchRevision uint16) Revision {
	return Revision{Head: head, BranchID: branchID, BranchRevision: branchRevision}
}

// FromDescriptor builds a revision from a head word and a packed branch
// descriptor (branch id in the high 16 bits, branch revision in the
// low 16 bits), the form command-line tools accept.
func FromDescriptor(head, branchDescriptor uint32) Revision {
	return Revision{
		Head:           head,
		BranchID:       uint16(branchDescriptor >> 16),
		BranchRevision: uint16(branchDescriptor),
	}
}

// Version returns the head version, the low 16 bits of Head.
func (r Revision) Version() int {
	return int(r.Head & 0xffff)
}

// SubVersion returns the sub-version, the high 16 bits of Head.
func (r Revision) SubVersion() int {
	return int(r.Head >> 16)
}

// Branch returns the branch id as a [Branch].
func (r Revision) Branch() Branch {
	return Branch(r.BranchID)
}

// BranchDescriptor packs the branch id and revision into one word.
func (r Revision) BranchDescriptor() uint32 {
	return uint32(r.BranchID)<<16 | uint32(r.BranchRevision)
}

// Is reports whether the revision is on the given branch.
func (r Revision) Is(branch Branch) bool {
	return r.BranchID == uint16(branch)
}

// Has reports whether the revision is on the given branch at or above
// minRevision.
func (r Revision) Has(branch Branch, minRevision int) bool {
	return r.BranchID == uint16(branch) && int(r.BranchRevision) >= minRevision
}

// IsAfter reports whether the head version is strictly greater than
// version.
func (r Revision) IsAfter(version int) bool {
	return r.Version() > version
}

// String formats the revision as "0xHEAD" or "0xHEAD/LD:rev".
func (r Revision) String() string {
	if r.BranchID == 0 {
		return fmt.Sprintf("0x%x", r.Head)
	}
	return fmt.Sprintf("0x%x/%s:%d", r.Head, r.Branch(), r.BranchRevision)
}

// Parse parses the output of [Revision.String]. The head may be given
// in decimal or with a 0x prefix.
func Parse(text string) (Revision, error) {
	headText, branchText, hasBranch := strings.Cut(text, "/")
	head, err := strconv.ParseUint(headText, 0, 32)
	if err != nil {
		return Revision{}, fmt.Errorf("parsing revision head %q: %w", headText, err)
	}
	if !hasBranch {
		return New(uint32(head)), nil
	}

	name, revisionText, ok := strings.Cut(branchText, ":")
	if !ok {
		return Revision{}, fmt.Errorf("revision branch %q is missing a branch revision", branchText)
	}
	var branch Branch
	switch name {
	case "LD":
		branch = Leerdammer
	case "D1":
		branch = Double11
	default:
		id, err := strconv.ParseUint(name, 0, 16)
		if err != nil {
			return Revision{}, fmt.Errorf("unknown revision branch %q", name)
		}
		branch = Branch(id)
	}
	branchRevision, err := strconv.ParseUint(revisionText, 0, 16)
	if err != nil {
		return Revision{}, fmt.Errorf("parsing branch revision %q: %w", revisionText, err)
	}
	return NewBranched(uint32(head), uint16(branch), uint16(branchRevision)), nil
}
