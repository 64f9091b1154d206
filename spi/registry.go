/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package spi

import (
	"fmt"
	"sort"
	"sync"
)

const (
	ErrNilFactory    = "nil repository factory"
	ErrDuplicateName = "repository already registered"
	ErrUnknownName   = "no repository registered"
)

// Error is returned by the registry functions.
type Error struct {
	msg  string
	name string
}

func (e Error) Error() string {
	if e.name != "" {
		return fmt.Sprintf("%s [%s]", e.msg, e.name)
	}

	return e.msg
}

// Factory creates an unconfigured Repository.
type Factory func() Repository

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a Repository implementation available by name to New().
// Plugins usually call this from an init() function.
func Register(name string, factory Factory) error {
	if factory == nil {
		return Error{ErrNilFactory, name}
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		return Error{ErrDuplicateName, name}
	}

	registry[name] = factory

	return nil
}

// New returns a new unconfigured Repository created by the factory registered
// under the given name.
func New(name string) (Repository, error) {
	registryMu.RLock()
	factory, exists := registry[name]
	registryMu.RUnlock()

	if !exists {
		return nil, Error{ErrUnknownName, name}
	}

	return factory(), nil
}

// Names returns the sorted names of all registered repositories.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))

	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
