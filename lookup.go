package stardict

import "github.com/go-stardict/stardict/internal/dictfile"

// WordDefinitionSegment is one decoded (types, text) pair within a
// [WordDefinition]. Types is a 1+-character string of StarDict type
// codes (e.g. "g", "m", "h"); Text is UTF-8.
type WordDefinitionSegment struct {
	Types string
	Text  string
}

// WordDefinition is one headword's full set of definition segments.
type WordDefinition struct {
	Headword string
	Segments []WordDefinitionSegment
}

// Lookup resolves word against the dictionary: the direct index hit
// (if any) followed by every synonym alias's entry, deduplicated by
// canonical headword, each decoded into a [WordDefinition]. It reports
// false if word has no reachable entry, or if every reachable entry
// failed to decode.
func (d *Dictionary) Lookup(word string) ([]WordDefinition, bool) {
	entries, ok := d.idx.Lookup(word)
	if !ok {
		return nil, false
	}

	var results []WordDefinition
	for _, entry := range entries {
		segments, ok := d.dict.Lookup(d.Ifo, entry)
		if !ok {
			continue
		}
		results = append(results, WordDefinition{
			Headword: entry.Headword,
			Segments: toSegments(segments),
		})
	}

	if len(results) == 0 {
		return nil, false
	}
	return results, true
}

// toSegments converts internal/dictfile's decoded segments to the
// public [WordDefinitionSegment] shape.
func toSegments(segments []dictfile.Segment) []WordDefinitionSegment {
	out := make([]WordDefinitionSegment, len(segments))
	for i, s := range segments {
		out[i] = WordDefinitionSegment{Types: s.Types, Text: s.Text}
	}
	return out
}
