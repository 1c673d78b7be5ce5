package entity

// MediaKind identifies a collection item type that can be filed under a category.
type MediaKind string

const (
	MediaKindBook   MediaKind = "book"
	MediaKindMovie  MediaKind = "movie"
	MediaKindTvShow MediaKind = "tv_show"
)

// MediaKinds lists every kind that references categories.
var MediaKinds = []MediaKind{MediaKindBook, MediaKindMovie, MediaKindTvShow}
