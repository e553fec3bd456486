package sources

import "sort"

// Catalog builds every source in pipeline order: categories in priority
// order, sources within a category by display name. enabled filters by
// category; nil or empty means all
func Catalog(deps Deps, enabled map[Category]bool) []Source {
	all := []Source{
		newWikidata(deps),
		newWikipedia(deps),
		newBritannica(deps),
		newIMDbBio(deps),
		newGoogleBooks(deps),
		newIABooks(deps),
		newOpenLibrary(deps),
		newBing(deps),
		newBrave(deps),
		newDuckDuckGo(deps),
		newGoogleCSE(deps),
		newAPNews(deps),
		newBBC(deps),
		newGuardian(deps),
		newNYT(deps),
		newTMZ(deps),
		newVariety(deps),
		newBiographyCom(deps),
		newHistoryCom(deps),
		newPeople(deps),
		newSmithsonian(deps),
		newChroniclingAmerica(deps),
		newEuropeana(deps),
		newInternetArchive(deps),
		newTrove(deps),
		newClaudeSource(deps),
		newGeminiSource(deps),
	}

	rank := make(map[Category]int, 8)
	for i, c := range CategoryOrder() {
		rank[c] = i
	}

	out := make([]Source, 0, len(all))
	for _, s := range all {
		if len(enabled) > 0 && !enabled[s.Desc().Category] {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Desc(), out[j].Desc()
		if rank[di.Category] != rank[dj.Category] {
			return rank[di.Category] < rank[dj.Category]
		}
		return di.Name < dj.Name
	})
	return out
}

// Descriptors returns the catalog's static metadata, for the ops API
func Descriptors() []Descriptor {
	out := make([]Descriptor, 0, 27)
	for _, s := range Catalog(Deps{}, nil) {
		out = append(out, s.Desc())
	}
	return out
}
