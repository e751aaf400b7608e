/*
Package observability exposes prometheus metrics for the conversation engine.

Metrics are registered on a caller-supplied registry so that tests and
embedding applications can isolate them. A nil *Metrics is valid and records
nothing.
*/
package observability
