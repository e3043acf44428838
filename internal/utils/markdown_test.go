package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("# 공지\n\n<script>alert(1)</script>\n\n![급식](https://example.com/a.png)"))

	assert.Contains(t, out, "<h1")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `loading="lazy"`)
}

func TestRenderMarkdownEmbedsYouTube(t *testing.T) {
	out := string(RenderMarkdown("https://youtu.be/abc123?t=5"))
	assert.Contains(t, out, "https://www.youtube.com/embed/abc123")
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  안녕하세요  ", "안녕하세요"},
		{"<b>굵게</b> 글씨", "굵게 글씨"},
		{"<script>alert(1)</script>", ""},
		{"a < b & c", "a < b & c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeText(tt.in), "input %q", tt.in)
	}
}

func TestEnhanceHTMLContentEmpty(t *testing.T) {
	assert.Equal(t, "", strings.TrimSpace(string(EnhanceHTMLContent(""))))
}
