// Package servername makes server hostnames from console.log fit for display.
package servername

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxLength is the longest name, in characters, returned unshortened.
	MaxLength = 32

	// truncatedLength is how many characters are kept when a name is shortened.
	truncatedLength = 30

	ellipsis = "…"
)

var (
	// Matches: "Valve Matchmaking Server (Washington srcds1004-eat1 #46)"
	officialPattern = regexp.MustCompile(`^Valve Matchmaking Server \([a-zA-Z]+ srcds[0-9]+-[a-zA-Z]+\d #[0-9]+\)`)

	// Matches the " srcds1004-eat1 #46" shard part of an official name.
	shardPattern = regexp.MustCompile(` srcds[0-9]+-[a-zA-Z]+\d #[0-9]+`)

	doubleSpace = regexp.MustCompile(` {2,}`)
)

// decorative glyphs that community servers pad their names with.
var decorative = map[rune]struct{}{
	'█': {},
	'▟': {},
	'▙': {},
}

type result struct {
	name     string
	official bool
}

// Normalizer cleans up server names, remembering every name it has seen.
// It is not safe for concurrent use.
type Normalizer struct {
	cache map[string]result
}

// New returns an empty Normalizer.
func New() *Normalizer {
	return &Normalizer{cache: make(map[string]result)}
}

// Normalize returns the display form of raw and whether raw is an official
// matchmaking server.
func (n *Normalizer) Normalize(raw string) (string, bool) {
	if r, ok := n.cache[raw]; ok {
		return r.name, r.official
	}
	name, official := Clean(raw)
	n.cache[raw] = result{name: name, official: official}
	return name, official
}

// Len returns the number of cached names.
func (n *Normalizer) Len() int {
	return len(n.cache)
}

// Clean is Normalize without the cache.
//
// Official matchmaking names lose their datacenter shard. Other names lose
// unprintable characters and decorative blocks, have runs of spaces collapsed,
// and are cut to 30 characters plus an ellipsis when longer than MaxLength.
func Clean(raw string) (string, bool) {
	if officialPattern.MatchString(raw) {
		return shardPattern.ReplaceAllString(raw, ""), true
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if !unicode.IsPrint(r) {
			continue
		}
		if _, ok := decorative[r]; ok {
			continue
		}
		b.WriteRune(r)
	}

	name := doubleSpace.ReplaceAllString(strings.TrimSpace(b.String()), " ")
	if utf8.RuneCountInString(name) > MaxLength {
		runes := []rune(name)
		return string(runes[:truncatedLength]) + ellipsis, false
	}
	return name, false
}
