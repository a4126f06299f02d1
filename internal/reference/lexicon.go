package reference

import (
	"errors"
	"sort"
)

// NewLexicon compiles the recognition table an extractor scans with. It
// starts from the grading table's entries, folds extra alias spellings into
// the entries they name (a name the table does not know becomes a
// recognition-only entry without bounds), and then adds every catalog entry
// whose folded terms are still unclaimed. Recognition thereby stays wider
// than grading: a test the lexicon finds but the grading table does not
// cover surfaces as UNKNOWN instead of vanishing from the results.
func NewLexicon(grading *Table, aliases map[string][]string, catalog []Entry) (*Table, error) {
	if grading == nil {
		return nil, errors.New("grading table is required")
	}

	entries := grading.Entries()

	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spellings := aliases[name]
		target, ok := grading.Resolve(name)
		if !ok {
			entries = append(entries, Entry{Name: name, Aliases: spellings})
			continue
		}
		for i := range entries {
			if entries[i].Name != target.Name {
				continue
			}
			merged := make([]string, 0, len(entries[i].Aliases)+len(spellings))
			merged = append(merged, entries[i].Aliases...)
			merged = append(merged, spellings...)
			entries[i].Aliases = merged
			break
		}
	}

	claimed := make(map[string]bool, len(entries)*2)
	for i := range entries {
		for _, term := range entries[i].Terms() {
			claimed[grading.Fold(term)] = true
		}
	}

	// A catalog entry joins only when none of its terms is already taken, so
	// a curated table that reuses a catalog name keeps its own meaning.
outer:
	for _, e := range catalog {
		keys := make([]string, 0, len(e.Aliases)+1)
		for _, term := range e.Terms() {
			key := grading.Fold(term)
			if claimed[key] {
				continue outer
			}
			keys = append(keys, key)
		}
		for _, key := range keys {
			claimed[key] = true
		}
		entries = append(entries, e)
	}

	return NewTable(entries, grading.norm)
}
