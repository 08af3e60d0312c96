// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package descriptor

import "fmt"

// ResourceType tags the kind of a resource. The numeric value is the
// one written in dependency tables and resource references; the magic
// is the three-character container prefix.
type ResourceType int32

// Resource types. Values are wire constants.
const (
	TypeInvalid            ResourceType = 0
	TypeTexture            ResourceType = 1
	TypeMesh               ResourceType = 2
	TypePixelShader        ResourceType = 3
	TypeVertexShader       ResourceType = 4
	TypeAnimation          ResourceType = 5
	TypeGUIDSubstitution   ResourceType = 6
	TypeGfxMaterial        ResourceType = 7
	TypeSpuElf             ResourceType = 8
	TypeLevel              ResourceType = 9
	TypeFilename           ResourceType = 10
	TypeScript             ResourceType = 11
	TypeSettingsCharacter  ResourceType = 12
	TypeFileOfBytes        ResourceType = 13
	TypeSettingsSoftPhys   ResourceType = 14
	TypeFontFace           ResourceType = 15
	TypeMaterial           ResourceType = 16
	TypeDownloadable       ResourceType = 17
	TypeEditorSettings     ResourceType = 18
	TypeJoint              ResourceType = 19
	TypeGameConstants      ResourceType = 20
	TypePoppetSettings     ResourceType = 21
	TypeCachedLevelData    ResourceType = 22
	TypeSyncedProfile      ResourceType = 23
	TypeBevel              ResourceType = 24
	TypeGame               ResourceType = 25
	TypeSettingsNetwork    ResourceType = 26
	TypePacks              ResourceType = 27
	TypeBigProfile         ResourceType = 28
	TypeSlotList           ResourceType = 29
	TypeTranslation        ResourceType = 30
	TypeAdventureCreate    ResourceType = 31
	TypeLocalProfile       ResourceType = 32
	TypeLimitsSettings     ResourceType = 33
	TypeTutorials          ResourceType = 34
	TypeGUIDList           ResourceType = 35
	TypeAudioMaterials     ResourceType = 36
	TypeSettingsFluid      ResourceType = 37
	TypePlan               ResourceType = 38
	TypeTextureList        ResourceType = 39
	TypeMusicSettings      ResourceType = 40
	TypeMixerSettings      ResourceType = 41
	TypeReplayConfig       ResourceType = 42
	TypePalette            ResourceType = 43
	TypeStaticMesh         ResourceType = 44
	TypeAnimatedTexture    ResourceType = 45
	TypeVoipRecording      ResourceType = 46
	TypePins               ResourceType = 47
	TypeInstrument         ResourceType = 48
	TypeSample             ResourceType = 49
	TypeOutfitList         ResourceType = 50
	TypePaintBrush         ResourceType = 51
	TypeThingRecording     ResourceType = 52
	TypePainting           ResourceType = 53
	TypeQuest              ResourceType = 54
	TypeAnimationBank      ResourceType = 55
	TypeAnimationSet       ResourceType = 56
	TypeSkeletonMap        ResourceType = 57
	TypeSkeletonRegistry   ResourceType = 58
	TypeSkeletonAnimStyles ResourceType = 59
	TypeStreamingChunk     ResourceType = 61
	TypeAdventureShared    ResourceType = 62
	TypeAdventurePlay      ResourceType = 63
	TypeAnimationMap       ResourceType = 64
	TypeCachedCostumeData  ResourceType = 65
	TypeDataLabels         ResourceType = 66
	TypeAdventureMaps      ResourceType = 67

	// TypeGtfTexture and TypeGxtTexture share the texture wire value
	// but are framed with their own magic and a texture info header.
	TypeGtfTexture ResourceType = 0x1001
	TypeGxtTexture ResourceType = 0x1002
)

type typeInfo struct {
	name  string
	magic string
	value int32
}

var typeTable = map[ResourceType]typeInfo{
	TypeInvalid:            {"invalid", "", 0},
	TypeTexture:            {"texture", "TEX", 1},
	TypeGtfTexture:         {"gtf_texture", "GTF", 1},
	TypeGxtTexture:         {"gxt_texture", "GXT", 1},
	TypeMesh:               {"mesh", "MSH", 2},
	TypePixelShader:        {"pixel_shader", "", 3},
	TypeVertexShader:       {"vertex_shader", "", 4},
	TypeAnimation:          {"animation", "ANM", 5},
	TypeGUIDSubstitution:   {"guid_substitution", "GSB", 6},
	TypeGfxMaterial:        {"gfx_material", "GMT", 7},
	TypeSpuElf:             {"spu_elf", "", 8},
	TypeLevel:              {"level", "LVL", 9},
	TypeFilename:           {"filename", "", 10},
	TypeScript:             {"script", "FSH", 11},
	TypeSettingsCharacter:  {"settings_character", "CHA", 12},
	TypeFileOfBytes:        {"file_of_bytes", "", 13},
	TypeSettingsSoftPhys:   {"settings_soft_phys", "SSP", 14},
	TypeFontFace:           {"fontface", "FNT", 15},
	TypeMaterial:           {"material", "MAT", 16},
	TypeDownloadable:       {"downloadable_content", "DLC", 17},
	TypeEditorSettings:     {"editor_settings", "", 18},
	TypeJoint:              {"joint", "JNT", 19},
	TypeGameConstants:      {"game_constants", "CON", 20},
	TypePoppetSettings:     {"poppet_settings", "POP", 21},
	TypeCachedLevelData:    {"cached_level_data", "CLD", 22},
	TypeSyncedProfile:      {"synced_profile", "PRF", 23},
	TypeBevel:              {"bevel", "BEV", 24},
	TypeGame:               {"game", "GAM", 25},
	TypeSettingsNetwork:    {"settings_network", "NWS", 26},
	TypePacks:              {"packs", "PCK", 27},
	TypeBigProfile:         {"big_profile", "BPR", 28},
	TypeSlotList:           {"slot_list", "SLT", 29},
	TypeTranslation:        {"translation", "", 30},
	TypeAdventureCreate:    {"adventure_create_profile", "ADC", 31},
	TypeLocalProfile:       {"local_profile", "IPR", 32},
	TypeLimitsSettings:     {"limits_settings", "LMT", 33},
	TypeTutorials:          {"tutorials", "TUT", 34},
	TypeGUIDList:           {"guid_list", "GLT", 35},
	TypeAudioMaterials:     {"audio_materials", "AUM", 36},
	TypeSettingsFluid:      {"settings_fluid", "SSF", 37},
	TypePlan:               {"plan", "PLN", 38},
	TypeTextureList:        {"texture_list", "TXL", 39},
	TypeMusicSettings:      {"music_settings", "MUS", 40},
	TypeMixerSettings:      {"mixer_settings", "MIX", 41},
	TypeReplayConfig:       {"replay_config", "REP", 42},
	TypePalette:            {"palette", "PAL", 43},
	TypeStaticMesh:         {"static_mesh", "SMH", 44},
	TypeAnimatedTexture:    {"animated_texture", "ATX", 45},
	TypeVoipRecording:      {"voip_recording", "VOP", 46},
	TypePins:               {"pins", "PIN", 47},
	TypeInstrument:         {"instrument", "INS", 48},
	TypeSample:             {"sample", "", 49},
	TypeOutfitList:         {"outfit_list", "OFT", 50},
	TypePaintBrush:         {"paint_brush", "PBR", 51},
	TypeThingRecording:     {"thing_recording", "REC", 52},
	TypePainting:           {"painting", "PTG", 53},
	TypeQuest:              {"quest", "QST", 54},
	TypeAnimationBank:      {"animation_bank", "ABK", 55},
	TypeAnimationSet:       {"animation_set", "AST", 56},
	TypeSkeletonMap:        {"skeleton_map", "SMP", 57},
	TypeSkeletonRegistry:   {"skeleton_registry", "SRG", 58},
	TypeSkeletonAnimStyles: {"skeleton_anim_styles", "SAS", 59},
	TypeStreamingChunk:     {"streaming_chunk", "CHK", 61},
	TypeAdventureShared:    {"shared_adventure_data", "ADS", 62},
	TypeAdventurePlay:      {"adventure_play_profile", "ADP", 63},
	TypeAnimationMap:       {"animation_map", "AMP", 64},
	TypeCachedCostumeData:  {"cached_costume_data", "CCD", 65},
	TypeDataLabels:         {"data_labels", "DLA", 66},
	TypeAdventureMaps:      {"adventure_maps", "ADM", 67},
}

var (
	typesByMagic = make(map[string]ResourceType)
	typesByValue = make(map[int32]ResourceType)
)

func init() {
	for resourceType, info := range typeTable {
		if info.magic != "" {
			typesByMagic[info.magic] = resourceType
		}
		// Texture variants share value 1; the plain texture owns it.
		if resourceType < TypeGtfTexture {
			typesByValue[info.value] = resourceType
		}
	}
}

// TypeFromMagic returns the type framed with the given three-character
// magic, or TypeInvalid.
func TypeFromMagic(magic string) ResourceType {
	if resourceType, ok := typesByMagic[magic]; ok {
		return resourceType
	}
	return TypeInvalid
}

// TypeFromValue returns the type for a wire value, or TypeInvalid.
func TypeFromValue(value int32) ResourceType {
	if resourceType, ok := typesByValue[value]; ok {
		return resourceType
	}
	return TypeInvalid
}

// Magic returns the three-character container prefix, or "" for types
// that are never framed.
func (t ResourceType) Magic() string {
	return typeTable[t].magic
}

// Value returns the wire value written in dependency tables.
func (t ResourceType) Value() int32 {
	if info, ok := typeTable[t]; ok {
		return info.value
	}
	return int32(t)
}

// String returns the snake_case type name.
func (t ResourceType) String() string {
	if info, ok := typeTable[t]; ok {
		return info.name
	}
	return fmt.Sprintf("unknown(%d)", int32(t))
}

// ParseType parses the output of [ResourceType.String].
func ParseType(name string) (ResourceType, error) {
	for resourceType, info := range typeTable {
		if info.name == name {
			return resourceType, nil
		}
	}
	return TypeInvalid, fmt.Errorf("unknown resource type %q", name)
}
