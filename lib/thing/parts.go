// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package thing

import (
	"fmt"
	"slices"
)

// Part is a thing component slot. The value is the slot index in
// [Thing] and the bit in the 64-bit presence flags (before the
// creator-anim shift, see [FlagBit]).
type Part uint8

// PartCount is the number of part slots.
const PartCount = 0x3f

// Regular parts, in slot order.
const (
	PartBody Part = iota
	PartJoint
	PartWorld
	PartRenderMesh
	PartPos
	PartTrigger
	PartYellowHead
	PartAudioWorld
	PartAnimation
	PartGeneratedMesh
	PartLevelSettings
	PartSpriteLight
	PartScriptName
	PartCreature
	PartCheckpoint
	PartStickers
	PartDecorations
	PartScript
	PartShape
	PartEffector
	PartEmitter
	PartRef
	PartMetadata
	PartCostume
	PartCameraTweak
	PartSwitch
	PartSwitchKey
	PartGameplayData
	PartEnemy
	PartGroup
	PartPhysicsTweak
	PartNpc
	PartSwitchInput
	PartMicrochip
	PartMaterialTweak
	PartMaterialOverride
	PartInstrument
	PartSequencer
	PartControlinator
	PartPoppetPowerup
	PartPocketItem
	PartTransition
	PartFader
	PartAnimationTweak
	PartWindTweak
	PartPowerUp
	PartHudElem
	PartTagSynchronizer
	PartWormhole
	PartQuest
	PartConnectorHook
	PartAtmosphericTweak
	PartStreamingData
	PartStreamingHint
)

// Parts removed from the format. Slots 0x36..0x3c stopped being
// scanned at head version 0x13c and slot 0x3d at 0x18c. The creator
// anim slot exists only below sub-version 0x107, at flag bit 0x29.
const (
	PartTriggerEffector Part = 0x36 + iota
	PartPaint
	PartParticleClump
	PartParticleEmitter
	PartCameraZone
	PartKeyframedPosition
	PartCamera
	PartParticleEmitter2
	PartCreatorAnim
)

type partInfo struct {
	name    string
	version int
}

// partTable gives each slot its name and the parts revision that
// introduced it. Parts are serialized in ascending version order.
var partTable = [PartCount]partInfo{
	PartBody:              {"body", 0x1},
	PartJoint:             {"joint", 0x2},
	PartWorld:             {"world", 0x3},
	PartRenderMesh:        {"render_mesh", 0x4},
	PartPos:               {"pos", 0x5},
	PartTrigger:           {"trigger", 0x6},
	PartTriggerEffector:   {"trigger_effector", 0x7},
	PartPaint:             {"paint", 0x8},
	PartYellowHead:        {"yellowhead", 0x9},
	PartAudioWorld:        {"audio_world", 0xa},
	PartAnimation:         {"animation", 0xb},
	PartGeneratedMesh:     {"generated_mesh", 0xc},
	PartParticleClump:     {"particle_clump", 0xd},
	PartParticleEmitter:   {"particle_emitter", 0xe},
	PartCameraZone:        {"camera_zone", 0xf},
	PartLevelSettings:     {"level_settings", 0x10},
	PartSpriteLight:       {"sprite_light", 0x11},
	PartKeyframedPosition: {"keyframed_position", 0x12},
	PartCamera:            {"camera", 0x13},
	PartScriptName:        {"script_name", 0x14},
	PartCreature:          {"creature", 0x15},
	PartCheckpoint:        {"checkpoint", 0x16},
	PartStickers:          {"stickers", 0x17},
	PartDecorations:       {"decorations", 0x18},
	PartScript:            {"script", 0x19},
	PartShape:             {"shape", 0x1a},
	PartEffector:          {"effector", 0x1b},
	PartEmitter:           {"emitter", 0x1c},
	PartRef:               {"ref", 0x1d},
	PartMetadata:          {"metadata", 0x1e},
	PartCostume:           {"costume", 0x1f},
	PartParticleEmitter2:  {"particle_emitter_2", 0x20},
	PartCameraTweak:       {"camera_tweak", 0x21},
	PartSwitch:            {"switch", 0x22},
	PartSwitchKey:         {"switch_key", 0x23},
	PartGameplayData:      {"gameplay_data", 0x24},
	PartEnemy:             {"enemy", 0x25},
	PartGroup:             {"group", 0x26},
	PartPhysicsTweak:      {"physics_tweak", 0x27},
	PartNpc:               {"npc", 0x28},
	PartSwitchInput:       {"switch_input", 0x29},
	PartMicrochip:         {"microchip", 0x2a},
	PartMaterialTweak:     {"material_tweak", 0x2b},
	PartMaterialOverride:  {"material_override", 0x2c},
	PartInstrument:        {"instrument", 0x2d},
	PartSequencer:         {"sequencer", 0x2e},
	PartControlinator:     {"controlinator", 0x2f},
	PartPoppetPowerup:     {"poppet_powerup", 0x30},
	PartPocketItem:        {"pocket_item", 0x31},
	PartCreatorAnim:       {"creator_anim", 0x32},
	PartTransition:        {"transition", 0x33},
	PartFader:             {"fader", 0x34},
	PartAnimationTweak:    {"animation_tweak", 0x35},
	PartWindTweak:         {"wind_tweak", 0x36},
	PartPowerUp:           {"power_up", 0x37},
	PartHudElem:           {"hud_elem", 0x38},
	PartTagSynchronizer:   {"tag_synchronizer", 0x39},
	PartWormhole:          {"wormhole", 0x3a},
	PartQuest:             {"quest", 0x3b},
	PartConnectorHook:     {"connector_hook", 0x3c},
	PartAtmosphericTweak:  {"atmospheric_tweak", 0x3d},
	PartStreamingData:     {"streaming_data", 0x3e},
	PartStreamingHint:     {"streaming_hint", 0x3f},
}

// historyOrder lists every part by ascending introduction version, the
// order part bodies appear in a serialized thing.
var historyOrder = func() []Part {
	order := make([]Part, PartCount)
	for i := range order {
		order[i] = Part(i)
	}
	slices.SortFunc(order, func(a, b Part) int {
		return partTable[a].version - partTable[b].version
	})
	return order
}()

// Version returns the parts revision that introduced p.
func (p Part) Version() int {
	if int(p) >= PartCount {
		return 0
	}
	return partTable[p].version
}

// String returns the snake_case part name.
func (p Part) String() string {
	if int(p) >= PartCount {
		return fmt.Sprintf("part(%d)", uint8(p))
	}
	return partTable[p].name
}

// ParsePart parses the output of [Part.String].
func ParsePart(name string) (Part, error) {
	for i, info := range partTable {
		if info.name == name {
			return Part(i), nil
		}
	}
	return 0, fmt.Errorf("unknown part %q", name)
}
