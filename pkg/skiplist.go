package dupefilehash

import (
	"fmt"
	"math"
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// groupListLevels is the skiplist height used for group ordering
const groupListLevels = 16

// groupList keeps duplicate groups ordered by groupSortKey
type groupList struct {
	skiplist *zcsl.ZeroCopySkiplist[DuplicateGroup, string, string]
}

// groupSortKey orders larger files first and breaks ties by digest
func groupSortKey(g *DuplicateGroup) string {
	return fmt.Sprintf("%016x/%s", uint64(math.MaxInt64-g.Size), g.Hash)
}

func newGroupList() *groupList {
	getItemSize := func(g *DuplicateGroup) int {
		return g.Count
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &groupList{
		skiplist: zcsl.MakeZeroCopySkiplist[DuplicateGroup, string, string](
			groupListLevels,
			groupSortKey,
			getItemSize,
			cmpKey,
		),
	}
}

// Insert adds a group, using its digest as the entry context
func (gl *groupList) Insert(g DuplicateGroup) bool {
	return gl.skiplist.Insert(&g, g.Hash)
}

// Length returns the number of groups
func (gl *groupList) Length() int {
	return gl.skiplist.Length()
}

// Slice returns the groups in key order
func (gl *groupList) Slice() []DuplicateGroup {
	groups := make([]DuplicateGroup, 0, gl.Length())
	for current := gl.skiplist.First(); current != nil; current = current.Next() {
		groups = append(groups, *current.Item())
	}
	return groups
}
