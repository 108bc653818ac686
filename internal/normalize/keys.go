package normalize

import (
	"strings"
)

// ToLowerDotPath normalizes a configuration key to a lowercase dot-separated path.
// Double underscores (__) are treated as level separators and converted to dots.
// Single underscores within a level are preserved.
// Examples:
//   - "FOO__BAR" → "foo.bar"
//   - "DB_MAX_CONNECTIONS" → "db_max_connections"
//   - "REQUEST__DATE_FORMAT" → "request.date_format"
func ToLowerDotPath(key string) string {
	normalized := strings.ReplaceAll(key, "__", ".")
	return strings.ToLower(normalized)
}

// Split breaks a dot-separated path into its segments.
// It returns nil if the path is empty or any segment is empty.
// Examples:
//   - "request.locale" → ["request", "locale"]
//   - "locale" → ["locale"]
//   - "request..locale" → nil
func Split(path string) []string {
	if path == "" {
		return nil
	}
	segments := strings.Split(path, ".")
	for _, s := range segments {
		if s == "" {
			return nil
		}
	}
	return segments
}
