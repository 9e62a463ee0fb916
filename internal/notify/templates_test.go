package notify

import (
	"strings"
	"testing"
)

func TestRenderMatched_ContainsNicknames(t *testing.T) {
	html, text := renderMatched(matchedTemplateData{
		Nickname:           "Alice",
		PartnerNickname:    "Bob",
		CompatibilityScore: 88.25,
		MatchURL:           "https://example.com/match",
	})
	if !strings.Contains(html, "Bob") || !strings.Contains(text, "Bob") {
		t.Errorf("expected partner nickname in both bodies: html=%q text=%q", html, text)
	}
	if !strings.Contains(html, "88.2") || !strings.Contains(text, "88.2") {
		t.Errorf("expected compatibility score in both bodies")
	}
}

func TestRenderExpired_ContainsNickname(t *testing.T) {
	html, text := renderExpired(expiredTemplateData{Nickname: "Alice"})
	if !strings.Contains(html, "Alice") || !strings.Contains(text, "Alice") {
		t.Errorf("expected nickname in both bodies: html=%q text=%q", html, text)
	}
}
