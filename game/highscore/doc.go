// Package highscore persists the best score of each game configuration.
//
// FileStore keeps one score as decimal text and replaces it atomically.
// Registry hands out one store per config ID under a data directory, or
// in-memory stores when no directory is configured.
package highscore
