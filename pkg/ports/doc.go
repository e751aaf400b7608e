/*
Package ports defines the driven ports (interfaces) of the datadesk engine.

These interfaces decouple the conversation controller from storage backends,
file codecs and transports.

# Key Interfaces

  - SessionStore: persists and loads per-user session aggregates.
  - DistributedLocker: serializes access to a session across replicas.
  - Codec: turns uploaded bytes into a Dataset and a Dataset back into a file.
  - Dispatcher: the entry point transports feed events into.
*/
package ports
