package analysis

import (
	"html"
	"regexp"
	"strings"
)

// markupTag matches an opening or closing HTML tag such as <p>, </h4> or <br/>.
var markupTag = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)

// FormatResponse normalises raw backend text for display. Text that already
// carries markup is returned trimmed; plain text is escaped, wrapped in an
// ai-analysis div and gets <br> for each line break. Applying it twice
// yields the same result as applying it once.
func FormatResponse(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" || markupTag.MatchString(text) {
		return text
	}

	escaped := html.EscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return `<div class="ai-analysis">` + escaped + `</div>`
}
