package ui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"taskdeck/internal/tree"
)

// matchTasks returns the ids of nodes whose titles fuzzy-match the query.
// An empty query matches everything (nil result means "no filter").
func matchTasks(nodes []*tree.Node, query string) map[int64]bool {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil
	}
	targets := make([]string, len(nodes))
	for i, n := range nodes {
		targets[i] = strings.ToLower(n.Task.Title)
	}
	matched := make(map[int64]bool)
	for _, match := range fuzzy.Find(query, targets) {
		if match.Index >= 0 && match.Index < len(nodes) {
			matched[nodes[match.Index].Task.ID] = true
		}
	}
	return matched
}

// filterVisible keeps matching nodes plus their ancestors so a matched
// subtask still renders under its parent.
func filterVisible(matched map[int64]bool, n *tree.Node) bool {
	if matched == nil {
		return true
	}
	if matched[n.Task.ID] {
		return true
	}
	for _, c := range n.Children {
		if filterVisible(matched, c) {
			return true
		}
	}
	return false
}
