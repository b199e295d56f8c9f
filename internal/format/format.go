// Package format turns raw model text into renderable blocks. It is a pure
// string transformation: no side effects, no network access.
package format

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Bullet is the glyph substituted for every literal emphasis marker.
const Bullet = "•"

type BlockKind int

const (
	Paragraph BlockKind = iota
	List
)

// Block is one rendered unit: either a paragraph (internal line breaks
// preserved) or an unordered list.
type Block struct {
	Kind  BlockKind
	Text  string
	Items []string
}

type KeywordGlyph struct {
	Keyword string
	Glyph   string
}

// Glyphs is the ordered keyword table. Each whole-word, case-insensitive
// occurrence of a keyword is prefixed with its glyph; the original word is
// left intact. The order is fixed so decoration is deterministic.
var Glyphs = []KeywordGlyph{
	{"Calories", "🔥"},
	{"Protein", "💪"},
	{"Carbohydrates", "🍞"},
	{"Fat", "🧈"},
	{"Fiber", "🌿"},
	{"Vitamins", "💊"},
	{"Minerals", "🧪"},
	{"Healthy", "💚"},
	{"Unhealthy", "❌"},
	{"Nutritious", "🥗"},
	{"Exercise", "🏋️‍♀️"},
	{"Water", "💧"},
	{"Fruits", "🍎"},
	{"Vegetables", "🥦"},
	{"Meat", "🥩"},
	{"Fish", "🐟"},
	{"Dairy", "🥛"},
	{"Grains", "🌾"},
}

type keywordPattern struct {
	re    *regexp.Regexp
	glyph string
}

var keywordPatterns = compilePatterns()

func compilePatterns() []keywordPattern {
	patterns := make([]keywordPattern, len(Glyphs))
	for i, kg := range Glyphs {
		patterns[i] = keywordPattern{
			re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kg.Keyword) + `\b`),
			glyph: kg.Glyph,
		}
	}
	return patterns
}

// Decorate applies the text-level rules: asterisks become bullets, then
// every keyword occurrence gains its glyph prefix.
func Decorate(text string) string {
	text = strings.ReplaceAll(text, "*", Bullet)
	for _, kp := range keywordPatterns {
		text = kp.re.ReplaceAllString(text, kp.glyph+" $0")
	}
	return text
}

// Format runs the full pipeline: decorate, split into paragraphs on double
// line breaks, and classify each paragraph as a list or a text block.
func Format(text string) []Block {
	paragraphs := strings.Split(Decorate(text), "\n\n")
	blocks := make([]Block, 0, len(paragraphs))
	for _, p := range paragraphs {
		if strings.HasPrefix(strings.TrimSpace(p), Bullet) {
			items := make([]string, 0)
			for _, item := range strings.Split(p, Bullet) {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			blocks = append(blocks, Block{Kind: List, Items: items})
			continue
		}
		blocks = append(blocks, Block{Kind: Paragraph, Text: p})
	}
	return blocks
}

// sanitizer strips anything beyond the elements HTML emits. Model text is
// untrusted input.
var sanitizer = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("ul", "li", "p", "br")
	return p
}()

// HTML renders the formatted blocks as a sanitized fragment for transcript
// bubbles.
func HTML(text string) template.HTML {
	var buf strings.Builder
	for _, b := range Format(text) {
		switch b.Kind {
		case List:
			buf.WriteString("<ul>")
			for _, item := range b.Items {
				buf.WriteString("<li>")
				buf.WriteString(template.HTMLEscapeString(item))
				buf.WriteString("</li>")
			}
			buf.WriteString("</ul>")
		default:
			buf.WriteString("<p>")
			for i, line := range strings.Split(b.Text, "\n") {
				if i > 0 {
					buf.WriteString("<br>")
				}
				buf.WriteString(template.HTMLEscapeString(line))
			}
			buf.WriteString("</p>")
		}
	}
	return template.HTML(sanitizer.Sanitize(buf.String()))
}
