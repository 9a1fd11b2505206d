package dupefilehash

import (
	"github.com/facette/natsort"
)

// DuplicateGroup represents a group of files with the same size and digest
type DuplicateGroup struct {
	Hash      string   `json:"hash"`
	Size      int64    `json:"size"`
	Files     []string `json:"files"`
	Count     int      `json:"count"`
	HardLinks int      `json:"hardlinks,omitempty"` // members that share an inode with an earlier member
}

// WastedBytes returns the bytes that could be reclaimed by keeping one copy.
// Hard links to an already counted inode take no extra space.
func (g DuplicateGroup) WastedBytes() int64 {
	copies := g.Count - 1 - g.HardLinks
	if copies <= 0 {
		return 0
	}
	return g.Size * int64(copies)
}

// newDuplicateGroup builds the report form of one hash group
func newDuplicateGroup(digest Digest, records []FileRecord) DuplicateGroup {
	group := DuplicateGroup{
		Hash:  digest.String(),
		Files: make([]string, 0, len(records)),
		Count: len(records),
	}
	if len(records) > 0 {
		group.Size = records[0].Size
	}

	for i, rec := range records {
		group.Files = append(group.Files, rec.Path)
		for _, earlier := range records[:i] {
			if rec.SameInode(earlier) {
				group.HardLinks++
				break
			}
		}
	}

	natsort.Sort(group.Files)
	return group
}

// Groups returns the duplicate groups in report order: largest size first,
// then by digest. Paths within a group are in natural order.
func (idx *DuplicateIndex) Groups() []DuplicateGroup {
	list := newGroupList()
	idx.forEachDuplicate(func(digest Digest, records []FileRecord) {
		list.Insert(newDuplicateGroup(digest, records))
	})
	return list.Slice()
}
