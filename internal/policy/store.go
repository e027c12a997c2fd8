package policy

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/dvloznov/expense-audit/internal/logger"
)

// Store holds the chunked compliance policy and serves lexical retrieval
// over it.
type Store struct {
	chunks []string
	tokens []map[string]struct{}
}

// NewStore chunks a policy document into a searchable store.
func NewStore(text string, chunkSize, overlap int) *Store {
	chunks := Split(text, chunkSize, overlap)
	tokens := make([]map[string]struct{}, len(chunks))
	for i, chunk := range chunks {
		tokens[i] = tokenize(chunk)
	}
	return &Store{chunks: chunks, tokens: tokens}
}

// LoadStore reads and chunks a policy document from disk.
func LoadStore(ctx context.Context, path string, chunkSize, overlap int) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadStore: %w", err)
	}
	store := NewStore(string(data), chunkSize, overlap)
	log := logger.FromContext(ctx)
	log.Info().Str("path", path).Int("chunks", store.Len()).Msg("Compliance policy loaded")
	return store, nil
}

// Len reports the number of chunks in the store.
func (s *Store) Len() int {
	return len(s.chunks)
}

// Search returns up to limit chunks ranked by shared-token count with the
// query, best first. Chunks sharing no token with the query never come
// back; equal scores keep document order.
func (s *Store) Search(query string, limit int) []string {
	qtokens := tokenize(query)

	type scored struct {
		idx   int
		score int
	}
	var matches []scored
	for i, chunkTokens := range s.tokens {
		score := 0
		for tok := range qtokens {
			if _, ok := chunkTokens[tok]; ok {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{idx: i, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = s.chunks[m.idx]
	}
	return out
}

// tokenize lowercases text and splits on every rune that is not a letter
// or digit.
func tokenize(s string) map[string]struct{} {
	set := make(map[string]struct{})
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
