// Package textutil provides the title normalization used to pair source
// episodes with their shows.
//
// TitleKey strips punctuation and whitespace, lowercases, and keeps a fixed
// prefix of the result. ContainsTitleKey then asks whether that key appears in
// the normalized display string of an episode. The comparison is a heuristic:
// the prefix length mirrors a truncation performed by the source catalog and
// can be tuned through TitleKeyer.
package textutil
