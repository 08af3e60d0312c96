// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"github.com/bureau-foundation/resforge/lib/serial"
	"github.com/bureau-foundation/resforge/lib/slot"
)

// PlayerIDSize is the fixed width of a network player id.
const PlayerIDSize = 0x14

// ViewedLevelData records what a player had seen of a level the last
// time they opened it, so the game can badge new activity.
type ViewedLevelData struct {
	Slot                     slot.ID
	LastReviewCount          int32
	LastCommentCount         int32
	LastPhotoCount           int32
	LastAuthorPhotoCount     int32
	LastStreamEventTimestamp int64
	LastViewedTimestamp      int64
}

func (v *ViewedLevelData) Serialize(s *serial.Serializer) {
	v.Slot.Serialize(s)
	v.LastReviewCount = s.I32(v.LastReviewCount)
	v.LastCommentCount = s.I32(v.LastCommentCount)
	v.LastPhotoCount = s.I32(v.LastPhotoCount)
	v.LastAuthorPhotoCount = s.I32(v.LastAuthorPhotoCount)
	v.LastStreamEventTimestamp = s.I64(v.LastStreamEventTimestamp)
	v.LastViewedTimestamp = s.I64(v.LastViewedTimestamp)
}

// PhotoUser is one player tagged in a photo. Bounds is the tag
// rectangle in photo space.
type PhotoUser struct {
	PSID   string
	User   string
	Bounds serial.Vector4
}

// NewPhotoUser tags psid, truncated to the player id width, and uses it
// as the display name as well.
func NewPhotoUser(psid string) PhotoUser {
	if len(psid) > PlayerIDSize {
		psid = psid[:PlayerIDSize]
	}
	return PhotoUser{PSID: psid, User: psid}
}

func (p *PhotoUser) Serialize(s *serial.Serializer) {
	p.PSID = s.Str(p.PSID, PlayerIDSize)
	p.User = s.WString(p.User)
	p.Bounds = s.V4(p.Bounds)
}
