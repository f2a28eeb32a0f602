package extract

import (
	"regexp"
	"strings"
)

var (
	scriptBlocks = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlocks  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlTags     = regexp.MustCompile(`<[^>]+>`)
	whitespace   = regexp.MustCompile(`[ \t\r\f]+`)
	blankLines   = regexp.MustCompile(`\n\s*\n+`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
)

// HTML reduces an HTML document to plain text: script/style blocks go first,
// then all tags, then the five common entities are decoded and whitespace is
// normalized. Line breaks are preserved so line-oriented heuristics still see
// document structure.
func HTML(html string) string {
	text := scriptBlocks.ReplaceAllString(html, "")
	text = styleBlocks.ReplaceAllString(text, "")
	text = htmlTags.ReplaceAllString(text, "\n")
	text = entityReplacer.Replace(text)
	text = whitespace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
