package store

import "github.com/amishk599/jobdigest/internal/model"

// NopCache never stores anything; every lookup is a miss.
type NopCache struct{}

func NewNopCache() *NopCache { return &NopCache{} }

func (c *NopCache) Get(key string) (model.Vector, bool, error)           { return nil, false, nil }
func (c *NopCache) Put(key string, modelName string, v model.Vector) error { return nil }
