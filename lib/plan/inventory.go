// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/profile"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
	"github.com/bureau-foundation/resforge/lib/slot"
)

// Head version gates inside inventory details.
const (
	detailsTitleStrings = 0x1d0
	detailsCreator      = 0x1f0
	detailsPhotoData    = 0x23c
	detailsLevelUnlock  = 0x2b2
)

var (
	levelUnlockGate  = revision.Since(detailsLevelUnlock)
	titleStringsGate = revision.Since(detailsTitleStrings)
	creatorGate      = revision.Since(detailsCreator)
	photoDataGate    = revision.Since(detailsPhotoData)
)

// PhotoData describes the photo a plan was captured from.
type PhotoData struct {
	Icon  descriptor.Descriptor
	Photo descriptor.Descriptor
	Level slot.ID
	Users []profile.PhotoUser
}

func (p *PhotoData) Serialize(s *serial.Serializer) {
	p.Icon = s.Resource(p.Icon, descriptor.TypeTexture)
	p.Photo = s.Resource(p.Photo, descriptor.TypeTexture)
	p.Level.Serialize(s)
	p.Users = serial.Array(s, p.Users)
}

// InventoryDetails is what the inventory shows for a plan.
type InventoryDetails struct {
	DateAdded      int64
	LevelUnlock    slot.ID
	Highlight      uint32
	Type           uint32
	SubType        uint32
	TitleKey       uint32
	DescriptionKey uint32
	Icon           descriptor.Descriptor

	Title       string
	Description string

	Creator string
	Photo   *PhotoData
}

func (d *InventoryDetails) Serialize(s *serial.Serializer) {
	rev := s.Revision()

	d.DateAdded = s.I64(d.DateAdded)
	if levelUnlockGate.Allows(rev) {
		d.LevelUnlock.Serialize(s)
	}
	d.Highlight = s.U32(d.Highlight)
	d.Type = s.U32(d.Type)
	d.SubType = s.U32(d.SubType)
	d.TitleKey = s.U32(d.TitleKey)
	d.DescriptionKey = s.U32(d.DescriptionKey)
	d.Icon = s.Resource(d.Icon, descriptor.TypeTexture)
	if titleStringsGate.Allows(rev) {
		d.Title = s.WString(d.Title)
		d.Description = s.WString(d.Description)
	}
	if creatorGate.Allows(rev) {
		d.Creator = s.Str(d.Creator, profile.PlayerIDSize)
	}
	if photoDataGate.Allows(rev) {
		d.Photo = serial.Optional(s, d.Photo)
	}
}
