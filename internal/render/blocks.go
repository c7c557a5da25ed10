// Package render turns opaque service replies into the typed structures the
// frontend draws: paragraph/bullet-list segmentation of narrative text and
// structural classification of reply payloads.
package render

import "strings"

// BlockType discriminates renderable text blocks.
type BlockType string

const (
	BlockParagraph  BlockType = "paragraph"
	BlockBulletList BlockType = "bullet_list"
)

// Block is one renderable unit of narrative text: either a single-line
// paragraph or a bullet list.
type Block struct {
	Type  BlockType `json:"type"`
	Text  string    `json:"text,omitempty"`
	Items []string  `json:"items,omitempty"`
}

// Blocks segments narrative text into an ordered sequence of blocks in a
// single line-oriented pass. Lines starting with "* " or "- " accumulate
// into a bullet list; any other line flushes the pending list and, if
// non-blank, becomes its own paragraph. Paragraphs are never merged across
// lines. The function is stateless between calls and safe to re-run per
// render.
func Blocks(raw string) []Block {
	var (
		out     []Block
		pending []string
	)
	flush := func() {
		if len(pending) > 0 {
			out = append(out, Block{Type: BlockBulletList, Items: pending})
			pending = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if item, ok := bulletItem(trimmed); ok {
			pending = append(pending, item)
			continue
		}
		flush()
		if trimmed != "" {
			out = append(out, Block{Type: BlockParagraph, Text: trimmed})
		}
	}
	flush()

	return out
}

func bulletItem(trimmed string) (string, bool) {
	for _, marker := range []string{"* ", "- "} {
		if strings.HasPrefix(trimmed, marker) {
			return strings.TrimSpace(trimmed[len(marker):]), true
		}
	}
	return "", false
}
