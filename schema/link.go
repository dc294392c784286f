// Copyright 2024 The Authors
// This file is part of objectdb.

package schema

import "fmt"

// ValidateLinks checks that every LinkSchema in s names a collection
// that actually exists in s. Links are resolved lazily, by name, and
// never traversed here — a cycle between two collections' links is
// therefore never walked and never an error (spec §1, §9).
func ValidateLinks(s Schema) error {
	names := map[string]bool{}
	for _, c := range s.Collections {
		names[c.Name] = true
	}
	for _, c := range s.Collections {
		for _, l := range c.Links {
			if !names[l.TargetCollection] {
				return fmt.Errorf("schema: collection %q link %q targets unknown collection %q", c.Name, l.Name, l.TargetCollection)
			}
		}
	}
	return nil
}
