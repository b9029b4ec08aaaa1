package internal

import (
	"iter"
	"maps"
	"slices"
)

// Symbols merges symbol tables into one map. Later tables override
// earlier ones on duplicate names.
func Symbols[V any](seqs ...iter.Seq2[string, V]) map[string]V {
	merged := map[string]V{}
	for _, seq := range seqs {
		maps.Insert(merged, seq)
	}
	return merged
}

// SortedSymbols yields the entries of a symbol table in name order.
func SortedSymbols[V any](table map[string]V) iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, name := range slices.Sorted(maps.Keys(table)) {
			if !yield(name, table[name]) {
				return // Stop if the consumer stops
			}
		}
	}
}
