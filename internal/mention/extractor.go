// Package mention turns @username tokens inside free text into resolved
// directory references with positional offsets.
package mention

import (
	"context"
	"strings"

	"github.com/SAGARSINGH-1/HostelCMS/internal/directory"
	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
)

const (
	minHandleLen = 3
	maxHandleLen = 30
)

// Extractor resolves mention tokens against the username directory.
type Extractor struct {
	directory directory.Directory
}

// NewExtractor builds an extractor over the given directory.
func NewExtractor(dir directory.Directory) *Extractor {
	return &Extractor{directory: dir}
}

// span is one candidate token: text[start:end] is "@handle".
type span struct {
	start  int
	end    int
	handle string
}

// Extract scans text for @username tokens and returns one Mention per
// occurrence whose handle resolves in the directory, in text order.
//
// Two passes: the unique candidate handles are collected and resolved in a
// single batch (the directory is queried once per unique handle no matter
// how often it repeats), then the spans are re-walked to emit per-occurrence
// mentions with offsets into the original text. Unresolved occurrences are
// dropped silently.
func (e *Extractor) Extract(ctx context.Context, text string) ([]domain.Mention, error) {
	spans := scanTokens(text)
	if len(spans) == 0 {
		return nil, nil
	}

	unique := make([]string, 0, len(spans))
	seen := make(map[string]struct{}, len(spans))
	for _, s := range spans {
		if _, ok := seen[s.handle]; ok {
			continue
		}
		seen[s.handle] = struct{}{}
		unique = append(unique, s.handle)
	}

	resolved, err := e.directory.ResolveManyByHandles(ctx, unique)
	if err != nil {
		return nil, err
	}

	var mentions []domain.Mention
	for _, s := range spans {
		identity, ok := resolved[s.handle]
		if !ok {
			continue
		}
		mentions = append(mentions, domain.Mention{
			IdentityID: identity.ID,
			Role:       identity.Role,
			Username:   identity.Username,
			Start:      s.start,
			End:        s.end,
		})
	}
	return mentions, nil
}

// scanTokens finds "@" followed by 3-30 handle characters. The scan is a
// plain left-to-right walk with no shared state between calls; repeated
// calls on the same text yield identical spans.
func scanTokens(text string) []span {
	var spans []span
	for i := 0; i < len(text); i++ {
		if text[i] != '@' {
			continue
		}
		j := i + 1
		for j < len(text) && j-i-1 < maxHandleLen && isHandleChar(text[j]) {
			j++
		}
		if j-i-1 >= minHandleLen {
			spans = append(spans, span{
				start:  i,
				end:    j,
				handle: strings.ToLower(text[i+1 : j]),
			})
		}
		i = j - 1
	}
	return spans
}

// isHandleChar reports whether c may appear in a handle. Uppercase input is
// accepted and canonicalized to lowercase for lookup; offsets always point
// at the literal text.
func isHandleChar(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '.'
}
