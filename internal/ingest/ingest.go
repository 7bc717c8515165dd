// Package ingest discovers documents on the local filesystem: labeled
// exemplar trees for profile building, batch input directories and the
// daemon inbox.
package ingest

// Source is one discovered document.
type Source struct {
	Path       string
	Ext        string
	HashHex    string
	TemplateID string // exemplar label; empty for unlabeled input
	Duplicate  bool   // same content as an earlier source in the walk
	Err        string
}

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}
