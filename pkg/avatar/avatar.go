// Package avatar resolves display avatars for person cards.
//
// A person either has an image URL from the dataset or gets a generated
// placeholder: their initials on a background color picked deterministically
// from their name, so the same person always renders the same placeholder.
package avatar

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// palette holds the placeholder background colors (hex, lipgloss-compatible).
var palette = []string{
	"#7D56F4", // violet
	"#04B575", // green
	"#FF6AC1", // pink
	"#F2A33C", // amber
	"#3B9EFF", // blue
	"#E84855", // red
	"#2BC4C4", // teal
}

// Avatar describes how to draw a person's picture slot.
type Avatar struct {
	// URL is the dataset-provided image, empty for placeholders.
	URL string `json:"url,omitempty" bson:"url,omitempty"`

	// Initials is the placeholder text, at most two runes.
	Initials string `json:"initials,omitempty" bson:"initials,omitempty"`

	// Color is the placeholder background as a hex string.
	Color string `json:"color,omitempty" bson:"color,omitempty"`
}

// Placeholder reports whether the avatar has no real image.
func (a Avatar) Placeholder() bool { return a.URL == "" }

// Resolve produces an avatar for the given image URL and display name.
// When the URL is empty, the placeholder uses the first rune of up to two
// name words and a color keyed by the full name.
func Resolve(imageURL, name string) Avatar {
	if imageURL != "" {
		return Avatar{URL: imageURL}
	}
	return Avatar{
		Initials: Initials(name),
		Color:    colorFor(name),
	}
}

// Initials extracts up to two initials from a display name. Single-word
// names yield one initial; empty names yield "?".
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
			}
			break
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func colorFor(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return palette[h.Sum32()%uint32(len(palette))]
}
