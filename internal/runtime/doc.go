// Package runtime implements the conversation controller: the per-user state
// machine that turns inbound events into session changes and outbound
// commands.
//
// Every event is handled inside one session transaction. Handlers mutate a
// private copy of the session and queue commands; the copy is committed and
// the commands released only when the handler succeeds. User mistakes (bad
// filter input, nothing to sort) are answered in place without changing the
// stage; anything unexpected, panics included, aborts the transaction and
// returns the user to the Message stage with their data intact.
package runtime
