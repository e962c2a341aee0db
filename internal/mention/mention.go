package mention

import "regexp"

var pattern = regexp.MustCompile(`@(\w+)`)

// Extract returns the distinct usernames mentioned in text as @username
// tokens. A token is "@" followed by one or more word characters; trailing
// punctuation is not part of the name. Order follows first appearance.
func Extract(text string) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
