// Package alphabet provides the symbol sets stimuli are drawn from.
package alphabet

import (
	"sort"

	"github.com/verte-zerg/nback/internal/model"
)

// DefaultSoundSet is used when no sound set is configured.
const DefaultSoundSet = "letters"

var builtinSounds = map[string][]string{
	"letters": {"c", "h", "k", "l", "q", "r", "s", "t"},
	"numbers": {"1", "2", "3", "4", "5", "6", "7", "8"},
	"nato":    {"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"},
	"morse":   {".-", "-...", "-.-.", "-..", "..-.", "--.", "....", ".---"},
}

// ColorNames names the color indices 0..ColorCount-1.
var ColorNames = []string{"red", "green", "blue", "yellow", "magenta", "cyan", "orange", "purple"}

var colorHex = []string{"#FF4D4F", "#52C41A", "#1890FF", "#FADB14", "#EB2F96", "#13C2C2", "#FA8C16", "#722ED1"}

// ColorHex returns the terminal color of a color index, or "" when out of range.
func ColorHex(value int) string {
	if value < 0 || value >= len(colorHex) {
		return ""
	}
	return colorHex[value]
}

// Shapes names the image indices 0..ImageCount-1.
var Shapes = []string{"■", "▲", "●", "◆", "★", "✚", "♥", "⬟"}

// SoundSetNames lists the built-in sound sets.
func SoundSetNames() []string {
	names := make([]string, 0, len(builtinSounds))
	for name := range builtinSounds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SoundSet returns a built-in sound set by name.
func SoundSet(name string) (model.SoundSet, bool) {
	symbols, ok := builtinSounds[name]
	if !ok {
		return model.SoundSet{}, false
	}
	return model.SoundSet{Name: name, Symbols: append([]string(nil), symbols...)}, true
}

// Symbol returns a printable symbol for a channel value. The vis letters of
// the combination modality share the audio alphabet.
func Symbol(mod model.Modality, value int, sounds model.SoundSet) string {
	switch mod {
	case model.Audio, model.Audio2, model.Combination:
		if value >= 0 && value < len(sounds.Symbols) {
			return sounds.Symbols[value]
		}
	case model.Color:
		if value >= 0 && value < len(ColorNames) {
			return ColorNames[value]
		}
	case model.Image:
		if value >= 0 && value < len(Shapes) {
			return Shapes[value]
		}
	}
	return ""
}

// Size returns the number of values a modality can take.
func Size(mod model.Modality, sounds model.SoundSet) int {
	switch mod {
	case model.Position:
		return model.GridCells
	case model.Audio, model.Audio2, model.Combination:
		return len(sounds.Symbols)
	case model.Color:
		return model.ColorCount
	case model.Image:
		return model.ImageCount
	default:
		return 0
	}
}
