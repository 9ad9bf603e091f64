package location

import "hash/fnv"

// colorPalette holds the hex color tags cycled through by ColorTag. The board
// only needs keys on the same screen to be visually distinct, not globally
// unique colors.
var colorPalette = []string{
	"#89b4fa", // blue
	"#a6e3a1", // green
	"#f9e2af", // yellow
	"#f38ba8", // red
	"#cba6f7", // mauve
	"#94e2d5", // teal
	"#fab387", // peach
	"#74c7ec", // sapphire
	"#eba0ac", // maroon
	"#b4befe", // lavender
}

// ColorTag returns a deterministic hex color for a normalized location key.
// The same key always maps to the same color across runs.
func ColorTag(key string) string {
	if key == "" {
		return colorPalette[0]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return colorPalette[h.Sum32()%uint32(len(colorPalette))]
}
