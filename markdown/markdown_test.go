package markdown

import (
	"strings"
	"testing"
)

func TestRenderBasics(t *testing.T) {
	out, err := Render([]byte("# Title\n\nSome **bold** text."))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, `<h1 id="title">Title</h1>`) {
		t.Errorf("heading missing auto id: %q", got)
	}
	if !strings.Contains(got, "<strong>bold</strong>") {
		t.Errorf("bold not rendered: %q", got)
	}
}

func TestRenderGFMTable(t *testing.T) {
	src := "| a | b |\n|---|---|\n| 1 | 2 |"
	out, err := Render([]byte(src))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "<table>") {
		t.Errorf("table extension inactive: %q", out)
	}
}

func TestRenderGFMStrikethrough(t *testing.T) {
	out, err := Render([]byte("~~gone~~"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "<del>gone</del>") {
		t.Errorf("strikethrough inactive: %q", out)
	}
}

func TestRenderHighlightsCode(t *testing.T) {
	src := "```go\nfmt.Println(\"hi\")\n```"
	out, err := Render([]byte(src))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)
	// Chroma emits inline-styled spans instead of a bare code block.
	if !strings.Contains(got, "<pre") || !strings.Contains(got, "<span") {
		t.Errorf("code block not highlighted: %q", got)
	}
	if !strings.Contains(got, "Println") {
		t.Errorf("code content lost: %q", got)
	}
}

func TestRenderPassesRawHTML(t *testing.T) {
	out, err := Render([]byte("before\n\n<figure>x</figure>\n\nafter"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "<figure>x</figure>") {
		t.Errorf("raw html was escaped: %q", out)
	}
}

func TestRenderDeterministic(t *testing.T) {
	src := []byte("# One\n\n```go\nvar x int\n```\n\n- a\n- b\n")
	first, err := Render(src)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := Render(src)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(first) != string(second) {
		t.Error("same source rendered differently on consecutive runs")
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/page", "https://example.com/page"},
		{"http://example.com", "http://example.com"},
		{"mailto:hi@example.com", "mailto:hi@example.com"},
		{"tel:+15551234567", "tel:+15551234567"},
		{"/posts/hello/", "/posts/hello/"},
		{"#section", "#section"},
		{"javascript:alert(1)", ""},
		{"data:text/html,x", ""},
		{"relative/path", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSafeURLEscapesResult(t *testing.T) {
	got := SafeURL(`https://example.com/?a=1&b=2`)
	if !strings.Contains(got, "&amp;") {
		t.Errorf("query ampersand not escaped: %q", got)
	}
}
