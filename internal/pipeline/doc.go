// Package pipeline implements the candidate pipeline that turns raw provider
// search results into catalog-matched tracks.
//
// A run moves candidates through fixed stages:
//
//	Filter -> Score -> Sort -> Dedupe -> Clean -> Match
//
// Filtering, scoring, deduplication, and cleaning are pure functions over
// their inputs. Only the catalog matcher performs I/O, through the
// [CatalogSearcher] collaborator, and only the matcher fans out work across
// goroutines. Candidates dropped by any stage are attrition, not errors; a
// run that produces zero tracks is a valid outcome.
//
// The lyrics backend scores and re-ranks candidates by query relevance; the
// track backend keeps the provider's popularity ordering and never scores.
// The [Backend] enum is dispatched once at pipeline entry.
package pipeline
