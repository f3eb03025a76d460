/*
fixsession — FIX protocol decoder and session controller
Copyright (C) 2025 Steve Clarke <stephenlclarke@mac.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/
package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Set is a collection of dictionaries indexed by BeginString. The last
// dictionary loaded for a given BeginString wins any collision, matching
// how directory listings are generally unordered across platforms.
type Set struct {
	mu    sync.RWMutex
	byKey map[string]*Dictionary
}

// NewSet returns an empty dictionary set.
func NewSet() *Set {
	return &Set{byKey: make(map[string]*Dictionary)}
}

// LoadDirectory loads every *.xml file in path into the set, keyed by each
// dictionary's BeginString. Per-file failures are collected and returned
// together only if nothing at all could be loaded; a directory with a mix
// of good and bad files still succeeds with the good ones.
func (s *Set) LoadDirectory(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("dictionary path does not exist: %s: %w", path, err)
	}

	var failures []string
	loaded := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}

		full := filepath.Join(path, entry.Name())

		dict, err := LoadFile(full)
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}

		s.Add(dict)
		loaded++
	}

	if loaded == 0 {
		msg := fmt.Sprintf("no dictionaries loaded from %s", path)
		if len(failures) > 0 {
			msg += ". errors: " + strings.Join(failures, "; ")
		}

		return fmt.Errorf(msg)
	}

	return nil
}

// Add inserts or replaces the dictionary for its BeginString.
func (s *Set) Add(d *Dictionary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byKey == nil {
		s.byKey = make(map[string]*Dictionary)
	}

	s.byKey[d.BeginString()] = d
}

// FindByBeginString returns the dictionary registered for beginString, or
// nil if none has been loaded.
func (s *Set) FindByBeginString(beginString string) *Dictionary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.byKey[beginString]
}

// BeginStrings returns the begin strings of every loaded dictionary,
// unordered.
func (s *Set) BeginStrings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.byKey))
	for k := range s.byKey {
		out = append(out, k)
	}

	return out
}
