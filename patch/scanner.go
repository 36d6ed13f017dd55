package patch

import "strings"

// Match is the result of locating one region in a piece of content.
//
// When Found is true, content[StartTagEnd:EndTagStart] is the region body.
// Malformed is set when both markers exist but the end marker comes first;
// Found is false in that case.
type Match struct {
	Found       bool
	Malformed   bool
	Syntax      Syntax
	StartTagEnd int
	EndTagStart int
}

// Scanner locates marker-delimited regions. It holds no state between calls;
// markers are rediscovered on every scan.
type Scanner struct {
	syntaxes []Syntax
}

// NewScanner returns a scanner for the given file name.
func NewScanner(name string) Scanner {
	return Scanner{syntaxes: SyntaxFor(name)}
}

// Find looks up regionID in content using the first syntax whose start
// marker is present.
func (s Scanner) Find(content, regionID string) Match {
	for _, syn := range s.syntaxes {
		startTag := syn.StartTag(regionID)
		start := strings.Index(content, startTag)
		if start < 0 {
			continue
		}
		end := strings.Index(content, syn.EndTag(regionID))
		if end < 0 {
			return Match{Syntax: syn}
		}
		startTagEnd := start + len(startTag)
		if end < startTagEnd {
			return Match{Syntax: syn, Malformed: true}
		}
		return Match{
			Found:       true,
			Syntax:      syn,
			StartTagEnd: startTagEnd,
			EndTagStart: end,
		}
	}
	return Match{}
}
