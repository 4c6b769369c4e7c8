// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import "sort"

// ObjectSet is a set of discovered object identifiers.
type ObjectSet map[string]struct{}

// NewObjectSet returns a set holding ids.
func NewObjectSet(ids ...string) ObjectSet {
	s := make(ObjectSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set.
func (s ObjectSet) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s ObjectSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Merge adds every member of other.
func (s ObjectSet) Merge(other ObjectSet) {
	for id := range other {
		s.Add(id)
	}
}

// Sorted returns the members in lexical order.
func (s ObjectSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
