package openai

import (
	"regexp"
	"strings"
)

var (
	reMarkdownImg = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`) // ![alt](url)
	reURL         = regexp.MustCompile(`https?://\S+`)
)

// telegram rejects messages over 4096 characters
const maxReplyLen = 3500

// sanitizeReply strips links and images from model output and caps its length.
func sanitizeReply(text string) string {
	text = reMarkdownImg.ReplaceAllString(text, "")
	text = reURL.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > maxReplyLen {
		text = string(r[:maxReplyLen]) + "…"
	}
	return text
}
