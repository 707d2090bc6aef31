package config

import (
	"os"

	"github.com/go-yaml/yaml"
	"github.com/joho/godotenv"
)

const ConfigPathEnv = "SHIFTSPACE_CONFIG"

const DefaultConfigPath = "/etc/shiftspace/config.yaml"

type Config struct {
	Server      Server      `yaml:"server"`
	Replication Replication `yaml:"replication"`
	Log         Log         `yaml:"log"`
}

type Server struct {
	Listen         string `yaml:"listen"`
	PostgresDsn    string `yaml:"postgresDsn"`
	RedisAddr      string `yaml:"redisAddr"`
	RedisDB        int    `yaml:"redisDB"`
	MemcachedAddr  string `yaml:"memcachedAddr"`
	EnableTrace    bool   `yaml:"enableTrace"`
	TraceEndpoint  string `yaml:"traceEndpoint"`
	SearchEndpoint string `yaml:"searchEndpoint"`
}

type Replication struct {
	MaxRetries  uint64 `yaml:"maxRetries"`
	FanoutLimit int    `yaml:"fanoutLimit"`
	QueueKey    string `yaml:"queueKey"`
}

type Log struct {
	Debug bool `yaml:"debug"`
}

func Default() Config {
	return Config{
		Server: Server{
			Listen: ":8000",
		},
		Replication: Replication{
			MaxRetries:  3,
			FanoutLimit: 8,
			QueueKey:    "shiftspace:replication",
		},
	}
}

// Path loads .env files when present and returns the config path named by the
// environment.
func Path() string {
	_ = godotenv.Load()
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return path
	}
	return DefaultConfigPath
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	config := Default()
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	return config, nil
}
