// Package sqlite stores complaints in ~/.whistle/data/complaints.db using the
// cgo-free modernc.org/sqlite driver.
//
// The schema comes from the embedded migrations package and the applied
// versions are tracked in schema_migrations. Rows carry an autoincrement seq
// column, so All and History return insertion order. A status change and its
// history row are written in the same transaction.
package sqlite
