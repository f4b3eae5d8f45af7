package rules

import (
	"embed"
	"path"
	"sort"
	"strings"
)

//go:embed presets/*.json
var presetFS embed.FS

// DefaultPreset is the rule list new agents get when none is given.
const DefaultPreset = "default"

var presetTitles = map[string]string{
	"default":      "Color Trail",
	"langton":      "Langton's Ant",
	"rainbow":      "Rainbow Trail",
	"colorMix":     "Color Mixer",
	"wallFollower": "Wall Follower",
	"spiral":       "Spiral Builder",
	"heatSeeker":   "Heat Seeker",
	"gradient":     "Gradient Painter",
	"mathWave":     "Math Wave",
	"averager":     "Color Averager",
	"amplifier":    "Brightness Amplifier",
	"spawner":      "Agent Spawner",
}

// Presets returns the names of the built-in rule lists, sorted.
func Presets() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// Preset returns the rule list text of a built-in preset.
func Preset(name string) (string, bool) {
	data, err := presetFS.ReadFile(path.Join("presets", name+".json"))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// PresetTitle is the display name of a preset, or the name itself.
func PresetTitle(name string) string {
	if t, ok := presetTitles[name]; ok {
		return t
	}
	return name
}
