package di

import (
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-workspace-cache/cache"
	"github.com/goliatone/go-workspace-cache/internal/cacheinfra"
	"github.com/goliatone/go-workspace-cache/workspacecache"
)

// Container provides dependency injection for cache related components.
// It manages singleton instances of the backing store, key serializer, and
// logger, and provides factory methods for creating retrieval services and
// sync registrars.
type Container struct {
	store         cache.Store
	keySerializer cache.KeySerializer
	config        cache.Config
	log           logrus.FieldLogger
}

// ContainerOption configures a Container.
type ContainerOption func(*Container)

// WithLogger sets the logger handed to services and registrars created
// through the container. Defaults to the logrus standard logger.
func WithLogger(log logrus.FieldLogger) ContainerOption {
	return func(c *Container) {
		if log != nil {
			c.log = log
		}
	}
}

// NewContainer creates a new DI container with the provided cache
// configuration. It initializes the backing store using the sturdyc adapter
// and sets up the default key serializer for consistent key generation.
func NewContainer(config cache.Config, opts ...ContainerOption) (*Container, error) {
	store, err := cacheinfra.NewSturdycStore(config)
	if err != nil {
		return nil, err
	}

	c := &Container{
		store:         store,
		keySerializer: cache.NewDefaultKeySerializer(),
		config:        config,
		log:           logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewContainerWithDefaults creates a new DI container using default
// configuration. This is a convenience constructor for typical use cases
// where custom configuration is not required.
func NewContainerWithDefaults(opts ...ContainerOption) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// NewContainerFromEnv creates a new DI container configured from
// environment variables layered over the defaults.
func NewContainerFromEnv(opts ...ContainerOption) (*Container, error) {
	config, err := cache.FromEnv()
	if err != nil {
		return nil, err
	}

	return NewContainer(config, opts...)
}

// Store returns the singleton backing store instance.
// This allows access to the underlying cache for advanced use cases.
func (c *Container) Store() cache.Store {
	return c.store
}

// KeySerializer returns the singleton key serializer instance.
// This allows access to the key serializer for custom caching implementations.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Config returns a copy of the cache configuration used by this container.
// This is useful for debugging and monitoring purposes.
func (c *Container) Config() cache.Config {
	return c.config
}

// Logger returns the logger shared by components created through the
// container.
func (c *Container) Logger() logrus.FieldLogger {
	return c.log
}

// NewService creates a retrieval service backed by the container's store,
// key serializer, and logger. One service per client session; callers own
// its lifecycle and should Close it when the session ends. Options are
// applied after the container defaults, so a per-service logger wins.
func (c *Container) NewService(transport workspacecache.Transport, opts ...workspacecache.Option) *workspacecache.Service {
	opts = append([]workspacecache.Option{workspacecache.WithLogger(c.log)}, opts...)
	return workspacecache.New(transport, c.store, c.keySerializer, opts...)
}

// NewRegistrar creates a sync registrar carrying the container's logger.
// Like services, registrars are session-scoped; callers should Close them
// when the session ends.
func (c *Container) NewRegistrar(syncTransport workspacecache.SyncTransport, identity workspacecache.IdentityProvider, opts ...workspacecache.RegistrarOption) *workspacecache.Registrar {
	opts = append([]workspacecache.RegistrarOption{workspacecache.WithRegistrarLogger(c.log)}, opts...)
	return workspacecache.NewRegistrar(syncTransport, identity, opts...)
}
