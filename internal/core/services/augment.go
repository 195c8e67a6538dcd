package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/guidewell-labs/guidewell-cli/internal/logger"
)

// shortQueryWords is the length below which a query is assumed to lean
// on an attached image rather than stand alone.
const shortQueryWords = 5

var (
	visionLabelRe  = regexp.MustCompile(`(?i)(primary lesion|color|texture/surface|distribution|likely conditions):`)
	listNumberRe   = regexp.MustCompile(`\b\d\.\s*`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	deicticMarkers = []string{"this", "it"}
)

// Augmenter rewrites the retrieval query when an image is attached:
// the description is cleaned, its lay terms gain clinical synonyms,
// and the result is folded in around the user's query.
type Augmenter struct {
	synonyms map[string]string
	order    []string
}

// NewAugmenter creates an augmenter over a lay-term synonym table.
func NewAugmenter(synonyms map[string]string) *Augmenter {
	// Iterate terms in sorted order so the expanded query is the same
	// on every run.
	order := make([]string, 0, len(synonyms))
	for term := range synonyms {
		order = append(order, term)
	}
	sort.Strings(order)

	return &Augmenter{synonyms: synonyms, order: order}
}

// Expand appends clinical vocabulary for every lay term found in the
// cleaned image description. Expansion applies to visual findings only;
// the user's own words reach retrieval untouched.
func (a *Augmenter) Expand(description string) string {
	lower := strings.ToLower(description)
	expanded := description
	for _, term := range a.order {
		if strings.Contains(lower, term) {
			expanded += " " + a.synonyms[term]
		}
	}
	if expanded != description {
		expanded = whitespaceRe.ReplaceAllString(expanded, " ")
		logger.Debug("Visual terms expanded: %q", expanded)
	}
	return expanded
}

// CleanDescription strips the structural markup from a vision model
// description, leaving plain clinical vocabulary for retrieval.
func (a *Augmenter) CleanDescription(desc string) string {
	cleaned := strings.ReplaceAll(desc, "**", "")
	cleaned = visionLabelRe.ReplaceAllString(cleaned, "")
	cleaned = listNumberRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Merge combines the raw query with a cleaned image description whose
// lay terms have been expanded. Without a description the query passes
// through unchanged. When the query is short or points at the image
// ("this", "it"), the visual terms lead so they dominate retrieval.
func (a *Augmenter) Merge(query, cleanedDescription string) string {
	if cleanedDescription == "" {
		return query
	}

	visual := a.Expand(cleanedDescription)
	if a.leansOnImage(query) {
		return visual + " " + query
	}
	return query + " " + visual
}

func (a *Augmenter) leansOnImage(query string) bool {
	if len(strings.Fields(query)) < shortQueryWords {
		return true
	}
	lower := strings.ToLower(query)
	for _, marker := range deicticMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
