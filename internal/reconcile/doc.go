// Package reconcile heals the roster store in the background.
//
// A [Driver] watches the accounts, members and songs collections and, on every snapshot,
// runs four phases in order:
//
//  1. collapse duplicate accounts (same handle modulo case and "@")
//  2. collapse duplicate roster members (same display name modulo case and diacritics)
//  3. backfill missing member handles from the account with the same name
//  4. rewrite legacy member ids in song assignments to handles
//
// Nothing runs until the accounts collection has loaded and is non-empty, so an
// empty snapshot from a store that is still loading never triggers deletes.
//
// Every write attempt produces a [WriteResult]. Failures are logged and reported,
// never returned: the next snapshot re-evaluates the collection from scratch.
package reconcile
