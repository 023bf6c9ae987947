package model

import "strings"

var categorySynonyms = map[string]string{
	"array":               "arrays",
	"arrays":              "arrays",
	"linked list":         "linked-lists",
	"linked-list":         "linked-lists",
	"linked lists":        "linked-lists",
	"linked-lists":        "linked-lists",
	"tree":                "trees",
	"trees":               "trees",
	"binary tree":         "trees",
	"string":              "strings",
	"strings":             "strings",
	"graph":               "graphs",
	"graphs":              "graphs",
	"dp":                  "dynamic-programming",
	"dynamic programming": "dynamic-programming",
	"dynamic-programming": "dynamic-programming",
	"stack":               "stacks",
	"stacks":              "stacks",
	"queue":               "queues",
	"queues":              "queues",
	"heap":                "heaps",
	"heaps":               "heaps",
	"hash table":          "hash-tables",
	"hash map":            "hash-tables",
	"hash-tables":         "hash-tables",
	"sorting":             "sorting",
	"searching":           "searching",
	"recursion":           "recursion",
	"backtracking":        "backtracking",
	"greedy":              "greedy",
	"math":                "math",
	"geometry":            "geometry",
	"design":              "design",
	"bit manipulation":    "bit-manipulation",
	"bit-manipulation":    "bit-manipulation",
	"trie":                "tries",
	"tries":               "tries",
	"union find":          "union-find",
	"union-find":          "union-find",
	"sliding window":      "sliding-window",
	"sliding-window":      "sliding-window",
	"two pointers":        "two-pointers",
	"two-pointers":        "two-pointers",
}

// NormalizeCategory maps a free-form category to its canonical name.
// Unknown categories pass through lowercased and trimmed; blank input yields nil.
func NormalizeCategory(raw string) *string {
	c := strings.ToLower(strings.TrimSpace(raw))
	if c == "" {
		return nil
	}
	if canonical, ok := categorySynonyms[c]; ok {
		c = canonical
	}
	return &c
}
