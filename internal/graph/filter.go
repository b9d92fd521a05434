package graph

import "strings"

// normalizeQuery lower-cases and trims a search string. An empty result
// matches every commit.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Matches reports whether the commit matches a case-insensitive substring
// query over its message, author name, author login and SHA.
func (c CommitRecord) Matches(query string) bool {
	return c.matches(normalizeQuery(query))
}

func (c CommitRecord) matches(q string) bool {
	if q == "" {
		return true
	}
	for _, field := range []string{c.Message, c.AuthorName, c.AuthorLogin, c.SHA, c.ShortSHA} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func filterCommits(commits []CommitRecord, q string) []CommitRecord {
	if q == "" {
		return commits
	}
	var filtered []CommitRecord
	for _, c := range commits {
		if c.matches(q) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
