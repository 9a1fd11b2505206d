package dupefilehash

import "os"

// FileRecord is a file seen by the walker. Size is read once when the record is
// created and is not re-checked if the file changes afterwards.
type FileRecord struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Dev  uint64 `json:"dev,omitempty"`
	Ino  uint64 `json:"ino,omitempty"`
}

// NewFileRecord builds a record from a path and its stat information
func NewFileRecord(path string, info os.FileInfo) FileRecord {
	rec := FileRecord{
		Path: path,
		Size: info.Size(),
	}
	rec.Dev, rec.Ino, _ = fileIdentity(info)
	return rec
}

// SameInode reports whether both records refer to the same inode. Records
// without inode information never match.
func (r FileRecord) SameInode(other FileRecord) bool {
	if r.Ino == 0 || other.Ino == 0 {
		return false
	}
	return r.Dev == other.Dev && r.Ino == other.Ino
}
