// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package slot

import (
	"fmt"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
)

// Type is the namespace a slot number lives in.
type Type int32

const (
	TypeDeveloper Type = iota
	TypeUserLocal
	TypeUserRemote
	TypePod
	TypeFakeRemote
	TypeRemote
	TypeDeveloperGroup
	TypeDLCLevel
	TypeDLCPack
	TypeLocal
	TypeStartMenu
	TypeDeveloperAdventure
	TypeLocalAdventure
	typeCount
)

var typeNames = [typeCount]string{
	"developer", "user_local", "user_remote", "pod", "fake_remote",
	"remote", "developer_group", "dlc_level", "dlc_pack", "local",
	"start_menu", "developer_adventure", "local_adventure",
}

func validType(t Type) bool { return t >= 0 && t < typeCount }

func (t Type) String() string {
	if !validType(t) {
		return fmt.Sprintf("slot_type(%d)", int32(t))
	}
	return typeNames[t]
}

// ID names one slot.
type ID struct {
	Type   Type
	Number uint32
}

func (id *ID) Serialize(s *serial.Serializer) {
	id.Type = serial.Enum32(s, id.Type, validType)
	id.Number = s.U32(id.Number)
}

func (id ID) String() string {
	return fmt.Sprintf("%s:%d", id.Type, id.Number)
}

// Head version gates for slot fields.
const (
	authorNameAdded     = 0x13b
	groupAdded          = 0x134
	translationTagAdded = 0x183
	shareableAdded      = 0x238
	planetDecorations   = 0x333
	developerLevelType  = 0x3d0
)

// Slot describes one level and where it appears.
type Slot struct {
	ID               ID
	Root             descriptor.Descriptor
	Icon             descriptor.Descriptor
	Location         serial.Vector4
	AuthorID         string
	AuthorName       string
	TranslationTag   string
	Title            string
	Description      string
	PrimaryLinkLevel ID
	Group            ID
	InitiallyLocked  bool
	Shareable        bool
	BackgroundGUID   descriptor.GUID
	PlanetDecoration descriptor.Descriptor
	DeveloperType    uint8
}

func (slot *Slot) Serialize(s *serial.Serializer) {
	version := s.Revision().Version()

	slot.ID.Serialize(s)
	slot.Root = s.Resource(slot.Root, descriptor.TypeLevel)
	slot.Icon = s.Resource(slot.Icon, descriptor.TypeTexture)
	slot.Location = s.V4(slot.Location)
	slot.AuthorID = s.Str(slot.AuthorID, 0x14)
	if version >= authorNameAdded {
		slot.AuthorName = s.WString(slot.AuthorName)
	}
	if version >= translationTagAdded {
		slot.TranslationTag = s.String(slot.TranslationTag)
	}
	slot.Title = s.WString(slot.Title)
	slot.Description = s.WString(slot.Description)
	slot.PrimaryLinkLevel.Serialize(s)
	if version >= groupAdded {
		slot.Group.Serialize(s)
	}
	slot.InitiallyLocked = s.Bool(slot.InitiallyLocked)
	if version >= shareableAdded {
		slot.Shareable = s.Bool(slot.Shareable)
		slot.BackgroundGUID = s.GUID(slot.BackgroundGUID)
	}
	if version >= planetDecorations {
		slot.PlanetDecoration = s.Resource(slot.PlanetDecoration, descriptor.TypePlan)
	}
	if version >= developerLevelType {
		slot.DeveloperType = s.U8(slot.DeveloperType)
	}
}

// List is the slot list resource.
type List struct {
	Slots []Slot

	// FromProductionBuild is written from head version 0x3b6 and
	// defaults to true.
	FromProductionBuild bool
}

// NewList returns an empty list marked as a production build.
func NewList(slots ...Slot) *List {
	return &List{Slots: slots, FromProductionBuild: true}
}

func (l *List) Serialize(s *serial.Serializer) {
	l.Slots = serial.Array(s, l.Slots)
	if s.Revision().Version() >= revision.ProductionBuild {
		l.FromProductionBuild = s.Bool(l.FromProductionBuild)
	} else if !s.IsWriting() {
		l.FromProductionBuild = true
	}
}

// ResourceType returns the container type of a slot list.
func (*List) ResourceType() descriptor.ResourceType { return descriptor.TypeSlotList }
