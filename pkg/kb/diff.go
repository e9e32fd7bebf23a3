package kb

import "github.com/aymanbagabas/go-udiff"

// Diff returns a unified diff between the file forms of a and b. It returns
// an empty string when both hold the same clauses in the same order.
func Diff(a, b *KnowledgeBase, labelA, labelB string) string {
	return udiff.Unified(labelA, labelB, a.String(), b.String())
}
