package discord

import (
	"strings"
	"unicode"

	"github.com/tiequan12345/DiscordV2Bot/internal/domain"
)

// DefaultFragmentLimit is Discord's hard per-message length limit.
const DefaultFragmentLimit = 2000

const quoteMarker = "> "

// Splitter breaks digest text into fragments that respect the transport's
// message size limit. It prefers to split on newline boundaries so formatted
// blocks stay intact. With QuoteAware set, a fragment that begins inside a
// block-quoted region gets the quote marker re-inserted, since the
// destination renders every fragment as an independent message.
type Splitter struct {
	Limit      int
	QuoteAware bool
}

var _ domain.Splitter = Splitter{}

// Split cuts text into fragments of at most Limit runes each. Empty and
// whitespace-only input yields no fragments; input that already fits is
// returned as a single fragment, unsplit.
func (s Splitter) Split(text string) []string {
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultFragmentLimit
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len([]rune(text)) <= limit {
		return []string{text}
	}
	if s.QuoteAware {
		return splitQuoted(text, limit)
	}
	return splitPlain(text, limit)
}

func splitPlain(text string, limit int) []string {
	var parts []string
	var current []rune

	flush := func() {
		part := strings.TrimRightFunc(string(current), unicode.IsSpace)
		if part != "" {
			parts = append(parts, part)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		if len(current)+len(runes)+1 > limit {
			flush()
			if len(runes) > limit {
				for start := 0; start < len(runes); start += limit {
					end := start + limit
					if end > len(runes) {
						end = len(runes)
					}
					parts = append(parts, string(runes[start:end]))
				}
				continue
			}
		}
		current = append(current, runes...)
		current = append(current, '\n')
	}
	flush()
	return parts
}

// splitQuoted keeps the header region (lines before the first quoted line)
// attached to the first fragment and guarantees that every fragment starting
// inside the quoted region carries the quote marker.
func splitQuoted(text string, limit int) []string {
	lines := strings.Split(text, "\n")
	firstQuote := -1
	for i, line := range lines {
		if strings.HasPrefix(line, ">") {
			firstQuote = i
			break
		}
	}
	if firstQuote < 0 {
		return splitPlain(text, limit)
	}

	markerLen := len([]rune(quoteMarker))
	var parts []string
	var current []rune

	flush := func() {
		part := strings.TrimRightFunc(string(current), unicode.IsSpace)
		if part != "" {
			parts = append(parts, part)
		}
		current = current[:0]
	}

	for i, line := range lines {
		inQuote := i >= firstQuote
		runes := []rune(line)

		if len(current)+len(runes)+1 > limit {
			flush()
		}
		if len(current) == 0 && inQuote && !strings.HasPrefix(line, ">") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			runes = append([]rune(quoteMarker), runes...)
		}

		if len(runes) > limit {
			window := limit - markerLen
			if !inQuote {
				window = limit
			}
			if window < 1 {
				window = 1
			}
			for start := 0; start < len(runes); start += window {
				end := start + window
				if end > len(runes) {
					end = len(runes)
				}
				chunk := string(runes[start:end])
				if inQuote && start > 0 && !strings.HasPrefix(chunk, ">") {
					chunk = quoteMarker + chunk
				}
				parts = append(parts, chunk)
			}
			continue
		}

		current = append(current, runes...)
		current = append(current, '\n')
	}
	flush()
	return parts
}
