package file

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"github.com/mementolabs/memento-go/pkg/store"
)

// unsafeChars matches every rune that is not allowed in a derived filename.
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_@.\-]`)

// maxSafeLength bounds the sanitized identifier portion of a filename; the
// appended hash keeps truncated identifiers collision-resistant.
const maxSafeLength = 64

// userFileName derives a safe, collision-resistant filename from a raw user
// identifier. Unsafe runes are replaced with underscores and the result is
// suffixed with the first 8 hex characters of the MD5 digest of the
// original, unsanitized identifier, so distinct raw identifiers that
// sanitize to the same string still map to distinct files.
func userFileName(userID string) string {
	safe := unsafeChars.ReplaceAllString(userID, "_")
	if len(safe) > maxSafeLength {
		safe = safe[:maxSafeLength]
	}

	digest := md5.Sum([]byte(userID))
	suffix := hex.EncodeToString(digest[:])[:8]

	return safe + "_" + suffix + fileExtension
}

// matchesQuery reports whether the record matches a case-insensitive
// substring query against its content, category, or any tag.
func matchesQuery(m *store.Memory, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(m.Content), q) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Category), q) {
		return true
	}
	for _, tag := range m.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// sortMemories orders records newest first, breaking creation-time ties with
// importance descending.
func sortMemories(memories []*store.Memory) {
	sort.SliceStable(memories, func(i, j int) bool {
		if !memories[i].CreatedAt.Equal(memories[j].CreatedAt) {
			return memories[i].CreatedAt.After(memories[j].CreatedAt)
		}
		return memories[i].Importance > memories[j].Importance
	})
}
