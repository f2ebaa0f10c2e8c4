package decompose

import "strings"

// roleKeywords maps a member role to the words that mark a subtask as a good
// fit for it. Roles are matched case-insensitively.
var roleKeywords = map[string][]string{
	"research": {"research", "analysis", "investigation"},
	"writing":  {"documentation", "creation", "development"},
	"review":   {"review", "testing", "finalization"},
	"analysis": {"analysis", "investigation", "research"},
	"design":   {"development", "creation", "planning"},
}

// RoleMatches reports whether text mentions any keyword of role.
// Unknown and empty roles never match.
func RoleMatches(role, text string) bool {
	keywords, ok := roleKeywords[strings.ToLower(strings.TrimSpace(role))]
	if !ok {
		return false
	}
	text = strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
