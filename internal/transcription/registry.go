package transcription

import (
	"fmt"
	"sort"
	"sync"

	"github.com/skillsenselab/audio-ai-api/internal/logger"
)

// Factory creates a provider instance from the shared transcription config.
type Factory func(cfg Config, log *logger.Logger) (Provider, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a provider factory under a name. Provider
// packages call this from init.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// New constructs the provider named by cfg.Provider.
func New(cfg Config, log *logger.Logger) (Provider, error) {
	cfg.ApplyDefaults()

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown transcription provider %q (registered: %v)", cfg.Provider, registeredNames())
	}
	return f(cfg, log)
}

func registeredNames() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
