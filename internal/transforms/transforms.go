// Package transforms tracks the data transform names a corpus entry may
// reference. The engine owns the transform implementations; the loader only
// needs to know which names exist so a typo fails at validation time instead
// of mid-run.
package transforms

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = map[string]struct{}{}
)

// builtins mirrors the transform set shipped with the training engine.
var builtins = []string{
	"sentencepiece",
	"bpe",
	"onmt_tokenize",
	"filtertoolong",
	"prefix",
	"suffix",
	"uppercase",
	"terminology",
	"docify",
	"inserttags",
	"normalize",
	"clean",
	"switchout",
	"tokendrop",
	"tokenmask",
}

func init() {
	for _, name := range builtins {
		registry[name] = struct{}{}
	}
}

// Register adds a transform name. Duplicate registration is an error so a
// plugin cannot silently shadow a builtin.
func Register(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("transform name must not be empty")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[name]; ok {
		return fmt.Errorf("cannot register duplicate transform %q", name)
	}
	registry[name] = struct{}{}
	return nil
}

func Known(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := registry[strings.TrimSpace(name)]
	return ok
}

// Names returns the registered transform names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
