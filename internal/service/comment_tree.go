// Package service contains business logic on top of the repositories.
package service

import "bloggazers/internal/models"

// BuildCommentTree assembles a flat comment slice into a forest. Children are
// linked under their parent; a comment whose parent is not present in the
// input (it was deleted, or the set is partial) is promoted to a root rather
// than dropped. Relative order of the input is preserved at every level.
//
// The builder only rewires Children pointers, so calling it again on the same
// slice yields the same forest.
func BuildCommentTree(comments []*models.Comment) []*models.Comment {
	byID := make(map[uint]*models.Comment, len(comments))
	for _, c := range comments {
		c.Children = nil
		byID[c.ID] = c
	}

	roots := make([]*models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok {
				parent.Children = append(parent.Children, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots
}

// DescendantIDs returns the ids of every comment transitively parented under
// rootID within the given flat set. The root itself is not included. The
// traversal is iterative, so arbitrarily deep threads cannot overflow the
// stack.
func DescendantIDs(comments []*models.Comment, rootID uint) []uint {
	children := make(map[uint][]uint, len(comments))
	for _, c := range comments {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	var ids []uint
	queue := []uint{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			ids = append(ids, child)
			queue = append(queue, child)
		}
	}
	return ids
}
