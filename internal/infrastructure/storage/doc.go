/*
Package storage provides the flat key/value store behind desktop
preferences.

# Backends

  - memory: process-local map, the default
  - disk: one file per key via diskv
  - sqlite: a single kv table

Values are opaque bytes; callers own the serialization. Get returns
ErrNotFound for keys that were never written, which callers treat as an
empty value rather than a failure.

	store, err := storage.Open(storage.Config{Driver: storage.DriverDisk, Dir: "~/.portal"})
*/
package storage
