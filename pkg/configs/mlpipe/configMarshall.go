package mlpipe

import (
	"time"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/mlpipe.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type ConfigMarshall struct {
	Metadata *MetadataConfigMarshall `yaml:"metadata,omitempty"`
	Cache    *CacheConfigMarshall    `yaml:"cache,omitempty"`
	Log      *LogConfigMarshall      `yaml:"log,omitempty"`
	Engine   string                  `yaml:"engine,omitempty"`
	Python   string                  `yaml:"python,omitempty"`
	Server   *ServerConfigMarshall   `yaml:"server,omitempty"`
	Kubeflow *KubeflowConfigMarshall `yaml:"kubeflow,omitempty"`
	Airflow  *AirflowConfigMarshall  `yaml:"airflow,omitempty"`
}

var _ Marshalled[*Config] = &ConfigMarshall{}

func (c *ConfigMarshall) trySeal(path string) *Config {
	engine := c.Engine
	if engine == "" {
		engine = "auto"
	}
	python := c.Python
	if python == "" {
		python = "python"
	}
	return &Config{
		metadata: orEmpty(c.Metadata).trySeal(path + ".metadata"),
		cache:    orEmpty(c.Cache).trySeal(path + ".cache"),
		log:      orEmpty(c.Log).trySeal(path + ".log"),
		engine:   engine,
		python:   python,
		server:   orEmpty(c.Server).trySeal(path + ".server"),
		kubeflow: orEmpty(c.Kubeflow).trySeal(path + ".kubeflow"),
		airflow:  orEmpty(c.Airflow).trySeal(path + ".airflow"),
	}
}

type MetadataConfigMarshall struct {
	// required by commands which open the metadata store. See MetadataConfig.StoreUri.
	Uri string `yaml:"uri,omitempty"`

	// open postgres via gorm, instead of pgx.
	Gorm bool `yaml:"gorm,omitempty"`
}

func (m *MetadataConfigMarshall) trySeal(path string) *MetadataConfig {
	return &MetadataConfig{
		uri:  m.Uri,
		path: path + ".uri",
		gorm: m.Gorm,
	}
}

type CacheConfigMarshall struct {
	Redis *RedisConfigMarshall `yaml:"redis,omitempty"`
}

func (c *CacheConfigMarshall) trySeal(path string) *CacheConfig {
	if c.Redis == nil {
		return &CacheConfig{}
	}
	return &CacheConfig{redis: c.Redis.trySeal(path + ".redis")}
}

type RedisConfigMarshall struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

func (r *RedisConfigMarshall) trySeal(path string) *RedisConfig {
	ttl := r.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	if ttl < 0 {
		panic(path + ".ttl should be positive")
	}
	return &RedisConfig{
		addr:     required(r.Addr, path+".addr"),
		password: r.Password,
		db:       r.DB,
		ttl:      ttl,
	}
}

type LogConfigMarshall struct {
	Level string `yaml:"level,omitempty"`
}

func (l *LogConfigMarshall) trySeal(string) *LogConfig {
	level := l.Level
	if level == "" {
		level = "info"
	}
	return &LogConfig{level: level}
}

type ServerConfigMarshall struct {
	Port int32 `yaml:"port,omitempty"`
}

func (s *ServerConfigMarshall) trySeal(path string) *ServerConfig {
	port := s.Port
	if port == 0 {
		port = 8080
	}
	if port < 0 || 65535 < port {
		panic(path + ".port is out of range")
	}
	return &ServerConfig{port: port}
}

type KubeflowConfigMarshall struct {
	Namespace  string `yaml:"namespace,omitempty"`
	Kubeconfig string `yaml:"kubeconfig,omitempty"`
}

func (k *KubeflowConfigMarshall) trySeal(string) *KubeflowConfig {
	ns := k.Namespace
	if ns == "" {
		ns = "kubeflow"
	}
	return &KubeflowConfig{namespace: ns, kubeconfig: k.Kubeconfig}
}

type AirflowConfigMarshall struct {
	Home string `yaml:"home,omitempty"`
}

func (a *AirflowConfigMarshall) trySeal(string) *AirflowConfig {
	return &AirflowConfig{home: a.Home}
}

func orEmpty[T any](v *T) *T {
	if v == nil {
		return new(T)
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}
