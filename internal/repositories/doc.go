// Package repositories implements the roster's document store on SQLite.
//
// A [Store] exposes the collection-oriented contract the reconciliation driver and
// the CLI consume: Insert, partial Update, Delete, ordered List and Subscribe.
//
// Records carry a uuid id and a per-collection sequence number. The sequence is the
// insertion order every List and snapshot is sorted by, and the order duplicate
// collapsing depends on. Deletes are soft: rows keep their deleted_at timestamp and are
// excluded from every read.
//
// Successful writes publish a [feed.Event] so that subscriptions, in this process or
// another one sharing a Redis feed, re-read the collection and deliver a fresh snapshot.
package repositories
