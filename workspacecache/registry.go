package workspacecache

import "github.com/puzpuzpuz/xsync/v3"

// loadedKey identifies one entity key within its class partition.
type loadedKey struct {
	class EntityClass
	key   string
}

// loadedKeys records which entity keys resolved successfully at least once
// this session. The set lives in memory only and dies with the service;
// lookups and mutations are lock-free and never fail.
type loadedKeys struct {
	keys *xsync.MapOf[loadedKey, struct{}]
}

func newLoadedKeys() *loadedKeys {
	return &loadedKeys{keys: xsync.NewMapOf[loadedKey, struct{}]()}
}

func (l *loadedKeys) has(class EntityClass, key string) bool {
	_, ok := l.keys.Load(loadedKey{class: class, key: key})
	return ok
}

func (l *loadedKeys) add(class EntityClass, key string) {
	l.keys.Store(loadedKey{class: class, key: key}, struct{}{})
}

func (l *loadedKeys) remove(class EntityClass, key string) {
	l.keys.Delete(loadedKey{class: class, key: key})
}

func (l *loadedKeys) size() int {
	return l.keys.Size()
}
