package consolelog

import "unicode"

// NonASCIIUsernames reports whether any of usernames has a non-ASCII
// character. Such names may not match console.log exactly, as the game
// doesn't always write them as UTF-8.
func NonASCIIUsernames(usernames []string) bool {
	for _, name := range usernames {
		for _, r := range name {
			if r > unicode.MaxASCII {
				return true
			}
		}
	}
	return false
}
