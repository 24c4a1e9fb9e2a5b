// Package collector turns the watched history of source libraries into a flat,
// ordered list of catalog.WatchedItem values.
//
// Movies map one-to-one. Show and anime libraries are handled identically:
// the collector lists shows with watched episodes and the library's watched
// episodes, then pairs them with the textutil title-key containment heuristic
// because the source's episode listing does not name the owning show in a
// comparable form. Identifiers are normalized with providerid; malformed ones
// are dropped and reported instead of failing the run.
package collector
