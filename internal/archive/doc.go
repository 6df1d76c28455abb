// Package archive reads and writes portable deck files.
//
// A deck archive bundles one deck, its cards, and their review states
// into a single JSON document, stored either as plain JSON for
// interchange or gzip-compressed with the .fcz extension for managed
// storage. The Manager keeps managed archives in one directory and
// rotates timestamped backups of files it overwrites or deletes.
package archive
