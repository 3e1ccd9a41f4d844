// ABOUTME: Reads ingestible documents (.txt, .md, .markdown, .html) into normalized plain text
// ABOUTME: HTML is reduced to readable text; script and style content is dropped

package rag

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// SupportedExtensions lists the file types ingestion accepts.
var SupportedExtensions = []string{".txt", ".md", ".markdown", ".html", ".htm"}

// Supported reports whether path has an ingestible extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile returns the text of path in NFC form. Invalid UTF-8 is dropped.
func LoadFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	text := strings.ToValidUTF8(string(raw), "")

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		text, err = htmlText(text)
		if err != nil {
			return "", fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return norm.NFC.String(text), nil
}

// htmlText extracts visible text, one block element per paragraph.
func htmlText(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	walkText(doc, &b)
	return strings.TrimSpace(collapseBlankLines(b.String())), nil
}

func walkText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "iframe", "head":
			return
		case "p", "div", "section", "article", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "table":
			b.WriteString("\n\n")
		case "br":
			b.WriteString("\n")
		case "li":
			b.WriteString("\n- ")
		}
	}
	if n.Type == html.TextNode {
		if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") && !strings.HasSuffix(b.String(), " ") {
				b.WriteString(" ")
			}
			b.WriteString(text)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, b)
	}
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
