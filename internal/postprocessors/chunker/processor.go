// Package chunker splits cleaned document text into overlapping,
// context-tagged passages suitable for embedding and retrieval.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/logger"
)

// DefaultMaxWords is the default word budget per chunk, including the
// context tag.
const DefaultMaxWords = 200

// DefaultOverlapWords is the default word overlap between consecutive
// chunks of the same section.
const DefaultOverlapWords = 50

// MinContentWords is the floor for chunk body size. A long context tag
// never shrinks the content budget below this.
const MinContentWords = 50

// Processor splits document text into sentence-aligned, context-tagged
// chunks. Sections are detected via a heading vocabulary; each chunk is
// prefixed with a bracketed tag naming its document and section.
type Processor struct {
	maxWords     int
	overlapWords int
	headings     []string
	headingRe    *regexp.Regexp
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxWords sets the per-chunk word budget.
func WithMaxWords(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxWords = n
		}
	}
}

// WithOverlapWords sets the overlap between consecutive chunks in words.
func WithOverlapWords(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.overlapWords = n
		}
	}
}

// WithHeadings replaces the heading vocabulary.
func WithHeadings(headings []string) Option {
	return func(p *Processor) {
		if len(headings) > 0 {
			p.headings = headings
		}
	}
}

// New creates a chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxWords:     DefaultMaxWords,
		overlapWords: DefaultOverlapWords,
		headings:     DefaultHeadings,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed the chunk budget
	if p.overlapWords >= p.maxWords {
		p.overlapWords = p.maxWords / 4
	}

	quoted := make([]string, len(p.headings))
	for i, h := range p.headings {
		quoted[i] = regexp.QuoteMeta(h)
	}
	// Heading terms at line starts, case-insensitive, optional trailing
	// colon or period.
	p.headingRe = regexp.MustCompile(`(?im)^[ \t]*(` + strings.Join(quoted, "|") + `)\b[:.]?`)

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// section is a detected (heading, body) pair.
type section struct {
	heading string
	body    string
}

// Process splits the document text into an ordered sequence of passages
// covering the entire input. Consecutive chunks of a section overlap by
// at most the configured word count.
func (p *Processor) Process(docID, text string) []domain.Passage {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	preamble, secs := p.splitSections(text)

	var chunks []string
	if len(secs) == 0 {
		// No headings found at all: chunk the whole text as one
		// section tagged with the document ID only.
		logger.Warn("No headings found in %s, using generic chunking", docID)
		chunks = p.chunkSection(text, docID)
	} else {
		if strings.TrimSpace(preamble) != "" {
			chunks = append(chunks, p.chunkSection(preamble, docID+" - General")...)
		}
		for _, sec := range secs {
			// Empty section bodies after a detected heading are skipped.
			if strings.TrimSpace(sec.body) == "" {
				continue
			}
			chunks = append(chunks, p.chunkSection(sec.body, docID+" - "+sec.heading)...)
		}
	}

	passages := make([]domain.Passage, 0, len(chunks))
	for i, c := range chunks {
		passages = append(passages, domain.Passage{
			ID:        fmt.Sprintf("%s_c%d", docID, i),
			DocID:     docID,
			Text:      c,
			WordCount: wordCount(c),
		})
	}
	return passages
}

// splitSections divides the text into a preamble (before the first
// heading) and an ordered list of (heading, body) pairs.
func (p *Processor) splitSections(text string) (string, []section) {
	matches := p.headingRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	preamble := text[:matches[0][0]]

	secs := make([]section, 0, len(matches))
	for i, m := range matches {
		heading := text[m[2]:m[3]]
		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		secs = append(secs, section{
			heading: strings.TrimRight(strings.TrimSpace(heading), ":."),
			body:    text[bodyStart:bodyEnd],
		})
	}
	return preamble, secs
}

// chunkSection accumulates sentences into chunks under the word budget,
// prefixing each with the bracketed context tag and seeding each new
// chunk with a trailing window of the previous one.
func (p *Processor) chunkSection(body, tag string) []string {
	sents := splitSentences(body)
	if len(sents) == 0 {
		return nil
	}

	// Reserve budget for the injected tag, with a floor so chunk
	// bodies never shrink below a minimum even for very long tags.
	effectiveMax := p.maxWords - wordCount(tag)
	if effectiveMax < MinContentWords {
		effectiveMax = MinContentWords
	}

	var chunks []string
	var cur []string
	curWords := 0

	flush := func() {
		content := strings.Join(cur, " ")
		if tag != "" {
			chunks = append(chunks, "["+tag+"] "+content)
		} else {
			chunks = append(chunks, content)
		}
	}

	for _, sent := range sents {
		w := wordCount(sent)

		if curWords+w <= effectiveMax {
			cur = append(cur, sent)
			curWords += w
			continue
		}

		if len(cur) > 0 {
			flush()
		}

		// Seed the next chunk with the trailing sentence window whose
		// cumulative word count is closest to, without exceeding, the
		// configured overlap.
		if p.overlapWords > 0 {
			var overlap []string
			ovWords := 0
			for i := len(cur) - 1; i >= 0; i-- {
				sw := wordCount(cur[i])
				if ovWords+sw > p.overlapWords {
					break
				}
				overlap = append([]string{cur[i]}, overlap...)
				ovWords += sw
			}
			cur, curWords = overlap, ovWords
		} else {
			cur, curWords = nil, 0
		}

		cur = append(cur, sent)
		curWords += w
	}

	// The last partial accumulation is always flushed, even under the
	// size threshold: trailing content is never dropped.
	if len(cur) > 0 {
		flush()
	}

	return chunks
}

// splitSentences segments text into sentences using Unicode sentence
// boundaries, dropping whitespace-only segments.
func splitSentences(text string) []string {
	var out []string
	iter := sentences.FromString(text)
	for iter.Next() {
		s := strings.TrimSpace(iter.Value())
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
