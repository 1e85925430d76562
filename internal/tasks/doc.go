// package tasks implements the client-side reconciliation logic of
// scrapedeck.
//
// Synchronizer keeps a displayed page of history records consistent with
// both user-driven pagination and server-pushed change notifications.
// Wizard drives a user through resolving one conflict record. Both are
// plain state owned by a single logical thread; async work is expressed as
// intents carrying session tokens, and completions with stale tokens are
// dropped rather than applied to superseded state.
package tasks
