// Package models defines the records of the worship-team roster and the types shared by the store and the reconciliation driver.
//
// Records live in six collections:
//   - [Account] : login identities (handle, password, role) in "accounts"
//   - [RosterMember] : team roster entries in "members", paired to an account by handle or name
//   - [Song] : repertoire entries in "songs", each carrying an ordered list of assigned identifiers
//   - [Notice] : board posts in "notices"
//   - [Event] : calendar entries in "events"
//   - [Notification] : leader-action notifications in "notifications"
//
// Every record embeds [Base], which carries the store-assigned id and sequence. Sequence order is
// the creation order the reconciliation driver relies on when deciding which duplicate survives.
//
// [Fields] is the partial-update payload understood by the store, and [Snapshot] is one full,
// ordered read of a collection.
package models
