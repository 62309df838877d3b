package validators

import "strings"

const MaxSearchLength = 100

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// SearchTerm reads and trims a free-text query parameter.
func SearchTerm(values map[string][]string, key string) string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return ""
	}
	return SanitizeString(v[0], MaxSearchLength)
}
