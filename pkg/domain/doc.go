/*
Package domain contains the core models of the datadesk conversation engine.

It defines the gas-station record schema, the per-user session aggregate, and
the events and commands exchanged with transports. The package is kept pure:
no I/O, no persistence, no transport details.

# Key Entities

  - Record / Dataset: one row of the uploaded table and an ordered set of rows.
  - FieldID: the closed set of named attributes a record can be queried by.
  - Session: the state of one user (stage, datasets, selections, menu history).
  - Event: something a user did (uploaded a file, typed text, pressed a button).
  - Command: something a transport must show the user (menu, text, file).
*/
package domain
