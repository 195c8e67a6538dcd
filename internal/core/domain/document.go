package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Document is a logical source unit: one extracted guideline document.
// Documents are immutable once extracted; re-extraction supersedes all
// passages derived from them.
type Document struct {
	// ID is the stable document identifier (typically the source file stem).
	ID string

	// Text is the full concatenated text content of the document.
	Text string
}

// Passage is the atomic retrieval unit produced by the chunker.
// Its text carries a bracketed context tag prefix identifying the
// originating document and section.
type Passage struct {
	// ID is the chunk identifier: document ID plus positional suffix.
	ID string `json:"id"`

	// DocID is the owning document.
	DocID string `json:"doc_id"`

	// Text is the chunk body including the context tag prefix.
	Text string `json:"text"`

	// WordCount is the number of words in Text, for size accounting.
	WordCount int `json:"word_count"`
}

// Fingerprint returns the content hash of the passage text.
// It is the sole criterion for "has this exact content been indexed",
// independent of chunk ID numbering.
func (p Passage) Fingerprint() string {
	sum := sha256.Sum256([]byte(p.Text))
	return hex.EncodeToString(sum[:])
}

// Tag returns the bracketed context tag, without brackets.
// Returns "" if the passage text carries no tag.
func (p Passage) Tag() string {
	if !strings.HasPrefix(p.Text, "[") {
		return ""
	}
	end := strings.Index(p.Text, "]")
	if end < 0 {
		return ""
	}
	return p.Text[1:end]
}

// Body returns the passage text without its context tag prefix.
func (p Passage) Body() string {
	if !strings.HasPrefix(p.Text, "[") {
		return p.Text
	}
	end := strings.Index(p.Text, "]")
	if end < 0 {
		return p.Text
	}
	return strings.TrimSpace(p.Text[end+1:])
}
