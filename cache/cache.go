// Package cache keeps large read-only objects, such as trained models and
// the feature catalog they bind to, loaded once per process.
package cache

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/hoju/config"
)

type cache struct {
	sync.Mutex
	objects map[string]any
}

// LoadFunc builds the object stored under key.
type LoadFunc func(cfg *config.Config, key string) (any, error)

// GlobalObjectCache is the process-wide cache.
var GlobalObjectCache *cache

func (c *cache) get(cfg *config.Config, key string, fn LoadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("loading into cache")
	obj, err := fn(cfg, key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

func CreateGlobalObjectCache() {
	GlobalObjectCache = &cache{objects: make(map[string]any)}
}

// Load returns the object under key, building it with fn on first use.
// Failed loads are not cached.
func Load(cfg *config.Config, key string, fn LoadFunc) (any, error) {
	if GlobalObjectCache == nil {
		CreateGlobalObjectCache()
	}
	return GlobalObjectCache.get(cfg, key, fn)
}

// Evict drops key so the next Load rebuilds it.
func Evict(key string) {
	if GlobalObjectCache == nil {
		return
	}
	GlobalObjectCache.Lock()
	defer GlobalObjectCache.Unlock()
	delete(GlobalObjectCache.objects, key)
}

// Keys lists the cached keys in sorted order.
func Keys() []string {
	if GlobalObjectCache == nil {
		return nil
	}
	GlobalObjectCache.Lock()
	defer GlobalObjectCache.Unlock()
	keys := lo.Keys(GlobalObjectCache.objects)
	sort.Strings(keys)
	return keys
}
