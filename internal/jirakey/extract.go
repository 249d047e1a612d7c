// package jirakey extracts issue-tracker keys from free-text commit messages
// and groups them per merge request.
package jirakey

import (
	"regexp"

	"github.com/mkravets/mr-insight-service/internal/domain"
)

// keyPattern recognizes issue keys of the form PROJECT-123: an uppercase
// project prefix, a literal hyphen, and the issue number.
var keyPattern = regexp.MustCompile(`[A-Z][A-Z0-9]*-[0-9]+`)

// Extract returns every non-overlapping key match in text, left to right.
// Duplicate occurrences are preserved.
func Extract(text string) []string {
	return keyPattern.FindAllString(text, -1)
}

// Index maps issue keys to the commits that mention them, preserving
// first-seen key order. A plain Go map would lose the order the keys were
// discovered in, which the output table depends on.
type Index struct {
	keys []string
	refs map[string][]domain.CommitRef
}

// Aggregate scans an ordered commit list and groups commit references by
// issue key. A commit mentioning two different keys contributes to both
// groups; a commit mentioning the same key twice contributes two refs to
// that key's group. A commit list with no matches yields an empty index,
// which is a valid outcome distinct from any fetch failure.
func Aggregate(commits []domain.Commit) *Index {
	ix := &Index{refs: make(map[string][]domain.CommitRef)}

	for _, c := range commits {
		for _, key := range Extract(c.Message) {
			if _, seen := ix.refs[key]; !seen {
				ix.keys = append(ix.keys, key)
			}

			ix.refs[key] = append(ix.refs[key], domain.CommitRef{
				SHA:     c.SHA,
				Message: c.Message,
			})
		}
	}

	return ix
}

// Keys returns the issue keys in the order they were first seen.
func (ix *Index) Keys() []string {
	return ix.keys
}

// Refs returns the ordered commit references recorded for key.
func (ix *Index) Refs(key string) []domain.CommitRef {
	return ix.refs[key]
}

// Empty reports whether no commit referenced any issue key.
func (ix *Index) Empty() bool {
	return len(ix.keys) == 0
}
