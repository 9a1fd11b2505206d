// Package dupefilehash finds files with identical content under a directory
// tree, independent of their names or locations.
//
// # Core API
//
// The heart of the package is DuplicateIndex. Files are added one at a time
// and grouped by size; content is only hashed once a second file of the same
// size shows up, so a file whose size is unique in the tree is never read:
//
//	hasher := dupefilehash.NewContentHasher(afero.NewOsFs(), algorithm, 0, nil)
//	idx := dupefilehash.NewDuplicateIndex(hasher)
//	for _, rec := range records {
//		if err := idx.Add(rec); err != nil {
//			log.Printf("skipping %s: %v", rec.Path, err)
//		}
//	}
//	for digest, files := range idx.CollectDuplicates() {
//		fmt.Println(digest, files)
//	}
//
// # Scanning a tree
//
// DupeFinder wires a Walker, a ContentHasher and a DuplicateIndex together
// using a Config:
//
//	df, err := dupefilehash.NewDupeFinder("/path/to/dir", nil, nil)
//	report, err := df.FindDuplicates(nil)
//	dupefilehash.WriteReport(os.Stdout, dupefilehash.FormatHuman, report)
//
// # Configuration
//
// Configuration is an INI file (see LoadConfig) with [filehash], [output],
// [verbose], [performance] and [scan] sections. Debug output is enabled with:
//
//	dupefilehash.SetDebugFlags("scan,index")
//	dupefilehash.SetVerboseLevel(3)
package dupefilehash
