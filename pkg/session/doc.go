/*
Package session implements per-user session management.

The Manager serializes every read-modify-write of one user's session behind a
per-user lock, while different users proceed in parallel. Locks are
reference counted and dropped as soon as no goroutine holds or waits for them.
An optional DistributedLocker extends the exclusion across replicas that share
a store.

Update is the transactional entry point: the callback works on a private copy
of the session, and the copy is stored only if the callback succeeds and the
context is still live.
*/
package session
