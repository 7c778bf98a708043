package cache

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/hoju/config"
)

func TestLoadOnce(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	cfg := config.DefaultConfig()
	calls := 0
	fn := func(_ *config.Config, key string) (any, error) {
		calls++
		return "obj:" + key, nil
	}
	for i := 0; i < 3; i++ {
		obj, err := Load(cfg, "model.json", fn)
		is.NoErr(err)
		is.Equal(obj, "obj:model.json")
	}
	is.Equal(calls, 1)
	is.Equal(Keys(), []string{"model.json"})

	Evict("model.json")
	_, err := Load(cfg, "model.json", fn)
	is.NoErr(err)
	is.Equal(calls, 2)
}

func TestFailedLoadNotCached(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	fail := errors.New("missing")
	_, err := Load(config.DefaultConfig(), "x", func(*config.Config, string) (any, error) {
		return nil, fail
	})
	is.True(errors.Is(err, fail))
	is.Equal(len(Keys()), 0)
}
