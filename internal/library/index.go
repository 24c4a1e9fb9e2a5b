package library

import "watchmigrate/internal/catalog"

type providerKey struct {
	provider string
	id       string
}

// Index is a read-only view over the target library snapshot fetched once per
// run. Lookups return records in fetch order so the first element is the
// record a linear scan would have found first.
type Index struct {
	records   []catalog.LibraryRecord
	movies    []int
	bySeries  map[string][]int
	byMovieID map[providerKey][]int
}

// NewIndex copies records and builds secondary indexes over them.
func NewIndex(records []catalog.LibraryRecord) *Index {
	idx := &Index{
		records:   make([]catalog.LibraryRecord, len(records)),
		bySeries:  make(map[string][]int),
		byMovieID: make(map[providerKey][]int),
	}
	copy(idx.records, records)

	for i, rec := range idx.records {
		switch rec.Type {
		case catalog.KindMovie:
			idx.movies = append(idx.movies, i)
			for provider, id := range rec.ProviderIDs {
				key := providerKey{provider: provider, id: id}
				idx.byMovieID[key] = append(idx.byMovieID[key], i)
			}
		case catalog.KindEpisode:
			idx.bySeries[rec.SeriesName] = append(idx.bySeries[rec.SeriesName], i)
		}
	}
	return idx
}

// Len returns the number of records in the snapshot.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.records)
}

// Scan calls fn for every record in fetch order until fn returns false.
func (idx *Index) Scan(fn func(catalog.LibraryRecord) bool) {
	if idx == nil {
		return
	}
	for _, rec := range idx.records {
		if !fn(rec) {
			return
		}
	}
}

// Movies returns all movie records in fetch order.
func (idx *Index) Movies() []catalog.LibraryRecord {
	if idx == nil {
		return nil
	}
	return idx.pick(idx.movies)
}

// MoviesByProvider returns movie records whose provider ID for provider equals
// id, in fetch order.
func (idx *Index) MoviesByProvider(provider, id string) []catalog.LibraryRecord {
	if idx == nil {
		return nil
	}
	return idx.pick(idx.byMovieID[providerKey{provider: provider, id: id}])
}

// EpisodesBySeries returns episode records whose series name equals
// seriesName exactly, in fetch order.
func (idx *Index) EpisodesBySeries(seriesName string) []catalog.LibraryRecord {
	if idx == nil {
		return nil
	}
	return idx.pick(idx.bySeries[seriesName])
}

// Counts returns the number of movie and episode records.
func (idx *Index) Counts() (movies, episodes int) {
	if idx == nil {
		return 0, 0
	}
	for _, positions := range idx.bySeries {
		episodes += len(positions)
	}
	return len(idx.movies), episodes
}

func (idx *Index) pick(positions []int) []catalog.LibraryRecord {
	if len(positions) == 0 {
		return nil
	}
	out := make([]catalog.LibraryRecord, len(positions))
	for i, pos := range positions {
		out[i] = idx.records[pos]
	}
	return out
}
