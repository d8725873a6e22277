package cache

import (
	"errors"
	"time"
)

// LayeredCache reads layers fastest first and back-fills the layers that
// missed. Writes go to every layer.
type LayeredCache struct {
	layers []Cache
}

// NewLayeredCache stacks layers in lookup order
func NewLayeredCache(layers ...Cache) *LayeredCache {
	return &LayeredCache{layers: layers}
}

func (c *LayeredCache) Get(key string) ([]byte, bool) {
	for i, layer := range c.layers {
		val, ok := layer.Get(key)
		if !ok {
			continue
		}
		for _, faster := range c.layers[:i] {
			_ = faster.Set(key, val, 0)
		}
		return val, true
	}
	return nil, false
}

func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	var errs []error
	for _, layer := range c.layers {
		errs = append(errs, layer.Set(key, value, ttl))
	}
	return errors.Join(errs...)
}

func (c *LayeredCache) Delete(key string) error {
	var errs []error
	for _, layer := range c.layers {
		errs = append(errs, layer.Delete(key))
	}
	return errors.Join(errs...)
}

func (c *LayeredCache) Clear() error {
	var errs []error
	for _, layer := range c.layers {
		errs = append(errs, layer.Clear())
	}
	return errors.Join(errs...)
}
