package sources

import "time"

// The obituary category is all scraped editorial sites. biography_com and
// history_com share an owner and an article pool, hence one family

func newBiographyCom(deps Deps) Source {
	return newScrapeSource(Descriptor{
		Type:            TypeBiographyCom,
		Name:            "Biography.com",
		Category:        CategoryObituary,
		Family:          "aande",
		Tier:            TierSecondary,
		Free:            true,
		MinDelay:        1500 * time.Millisecond,
		Timeout:         15 * time.Second,
		ArchiveFallback: true,
		MinContentLen:   200,
	}, deps, func(a Actor) string {
		return "https://www.biography.com/search?q=" + q(a)
	})
}

func newHistoryCom(deps Deps) Source {
	return newScrapeSource(Descriptor{
		Type:            TypeHistoryCom,
		Name:            "History.com",
		Category:        CategoryObituary,
		Family:          "aande",
		Tier:            TierMarginal,
		Free:            true,
		MinDelay:        1500 * time.Millisecond,
		Timeout:         15 * time.Second,
		ArchiveFallback: true,
		MinContentLen:   200,
	}, deps, func(a Actor) string {
		return "https://www.history.com/search?q=" + q(a)
	})
}

func newPeople(deps Deps) Source {
	return newScrapeSource(Descriptor{
		Type:            TypePeople,
		Name:            "People",
		Category:        CategoryObituary,
		Family:          "meredith",
		Tier:            TierMarginal,
		Free:            true,
		MinDelay:        1500 * time.Millisecond,
		Timeout:         15 * time.Second,
		ArchiveFallback: true,
		MinContentLen:   200,
	}, deps, func(a Actor) string {
		return "https://people.com/search?q=" + q(a)
	})
}

func newSmithsonian(deps Deps) Source {
	return newScrapeSource(Descriptor{
		Type:            TypeSmithsonian,
		Name:            "Smithsonian Magazine",
		Category:        CategoryObituary,
		Family:          "smithsonian",
		Tier:            TierSecondary,
		Free:            true,
		MinDelay:        1500 * time.Millisecond,
		Timeout:         15 * time.Second,
		ArchiveFallback: true,
		MinContentLen:   200,
	}, deps, func(a Actor) string {
		return "https://www.smithsonianmag.com/search/?q=" + q(a)
	})
}
