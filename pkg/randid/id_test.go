package randid

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9]*$`)

	for _, n := range []int{-1, 0, 1, 6, 12} {
		t.Run(fmt.Sprintf("length %d", n), func(t *testing.T) {
			got := Generate(n)
			assert.Len(t, got, max(n, 0))
			assert.Regexp(t, pattern, got)
		})
	}
}

func TestGenerate_RecordIDSuffix(t *testing.T) {
	// Notification ids are "<unix millis>-<6 chars>"; records created in the
	// same millisecond differ only by the suffix.
	idPattern := regexp.MustCompile(`^1773500400000-[a-z0-9]{6}$`)

	seen := make(map[string]bool)
	for range 200 {
		id := fmt.Sprintf("%d-%s", int64(1773500400000), Generate(6))
		assert.Regexp(t, idPattern, id)
		seen[id] = true
	}

	// 36^6 suffixes; a handful of collisions in 200 draws means broken randomness.
	assert.GreaterOrEqual(t, len(seen), 195)
}

func TestGenerate_UsesFullAlphabet(t *testing.T) {
	var letters, digits int
	for range 500 {
		for _, c := range Generate(6) {
			switch {
			case c >= 'a' && c <= 'z':
				letters++
			case c >= '0' && c <= '9':
				digits++
			}
		}
	}

	assert.Positive(t, letters)
	assert.Positive(t, digits)
}
