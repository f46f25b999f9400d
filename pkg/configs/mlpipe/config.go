package mlpipe

import (
	"fmt"
	"time"
)

// Configuration of mlpipe.
//
// to get `Config` instance, use `Unmarshal` or `LoadConfig` .
type Config struct {
	metadata *MetadataConfig
	cache    *CacheConfig
	log      *LogConfig
	engine   string
	python   string
	server   *ServerConfig
	kubeflow *KubeflowConfig
	airflow  *AirflowConfig
}

func (c *Config) Metadata() *MetadataConfig {
	return c.metadata
}

func (c *Config) Cache() *CacheConfig {
	return c.cache
}

func (c *Config) Log() *LogConfig {
	return c.log
}

// orchestration engine. "airflow", "kubeflow" or "auto" (default).
func (c *Config) Engine() string {
	return c.engine
}

// python interpreter to list installed packages. default = "python"
func (c *Config) Python() string {
	return c.python
}

func (c *Config) Server() *ServerConfig {
	return c.server
}

func (c *Config) Kubeflow() *KubeflowConfig {
	return c.kubeflow
}

func (c *Config) Airflow() *AirflowConfig {
	return c.airflow
}

type MetadataConfig struct {
	uri  string
	gorm bool

	// where uri is read from, for messages.
	path string
}

// uri of metadata store, like "sqlite://./mlmd.db", "postgres://..." or "http://mlmetad:8080".
func (m *MetadataConfig) Uri() string {
	return m.uri
}

// StoreUri is Uri for commands which open the metadata store.
//
// It returns ErrMisconfigured when uri is not configured.
func (m *MetadataConfig) StoreUri() (string, error) {
	if m.uri == "" {
		return "", fmt.Errorf("%w: %s is required", ErrMisconfigured, m.path)
	}
	return m.uri, nil
}

func (m *MetadataConfig) Gorm() bool {
	return m.gorm
}

type CacheConfig struct {
	redis *RedisConfig
}

// Redis returns nil when redis is not configured.
func (c *CacheConfig) Redis() *RedisConfig {
	return c.redis
}

type RedisConfig struct {
	addr     string
	password string
	db       int
	ttl      time.Duration
}

func (r *RedisConfig) Addr() string {
	return r.addr
}

func (r *RedisConfig) Password() string {
	return r.password
}

func (r *RedisConfig) DB() int {
	return r.db
}

// default = 24h
func (r *RedisConfig) TTL() time.Duration {
	return r.ttl
}

type LogConfig struct {
	level string
}

func (l *LogConfig) Level() string {
	return l.level
}

type ServerConfig struct {
	port int32
}

// default = 8080
func (s *ServerConfig) Port() int32 {
	return s.port
}

type KubeflowConfig struct {
	namespace  string
	kubeconfig string
}

// default = "kubeflow"
func (k *KubeflowConfig) Namespace() string {
	return k.namespace
}

func (k *KubeflowConfig) Kubeconfig() string {
	return k.kubeconfig
}

type AirflowConfig struct {
	home string
}

// AIRFLOW_HOME. empty means "decide by environment".
func (a *AirflowConfig) Home() string {
	return a.home
}
