// Package policy loads the compliance policy document and serves
// retrieval over its chunks for the policy chat agent.
package policy

import "strings"

// Default chunking parameters for the policy document.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 150
)

// Split breaks a policy document into retrieval chunks. Paragraphs are
// kept together while they fit under chunkSize; an oversized paragraph is
// split on sentence boundaries instead. Consecutive chunks overlap by up
// to overlap characters so clauses are not lost at cut points.
func Split(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	var (
		chunks  []string
		current []string
		size    int
	)

	flush := func(carry bool) {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, "\n\n"))
		if carry && overlap > 0 {
			last := current[len(current)-1]
			if len(last) <= overlap {
				current = []string{last}
				size = len(last)
				return
			}
		}
		current = nil
		size = 0
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) > chunkSize {
			flush(false)
			chunks = append(chunks, splitSentences(para, chunkSize, overlap)...)
			continue
		}

		if size+len(para) > chunkSize {
			flush(true)
		}
		current = append(current, para)
		size += len(para)
	}
	flush(false)

	return chunks
}

// splitSentences chunks one oversized paragraph on ". " boundaries,
// carrying trailing sentences into the next chunk up to the overlap
// budget.
func splitSentences(para string, chunkSize, overlap int) []string {
	parts := strings.Split(para, ". ")
	sentences := make([]string, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			sentences[i] = p + "."
		} else {
			sentences[i] = p
		}
	}

	var (
		chunks  []string
		current []string
		size    int
	)
	for _, s := range sentences {
		if size+len(s) > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))

			var carry []string
			carrySize := 0
			for i := len(current) - 1; i >= 0 && carrySize+len(current[i]) <= overlap; i-- {
				carry = append([]string{current[i]}, carry...)
				carrySize += len(current[i])
			}
			current = carry
			size = carrySize
		}
		current = append(current, s)
		size += len(s)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
