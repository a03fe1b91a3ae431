package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Training  TrainingConfig  `mapstructure:"training"`
	Queue     QueueConfig     `mapstructure:"queue"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite 或 mysql
	Path         string `mapstructure:"path"`   // sqlite 文件路径
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// AuthConfig API 操作员凭证（密码以 bcrypt 哈希存储）
type AuthConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

type ArtifactsConfig struct {
	Backend string    `mapstructure:"backend"` // local 或 oss
	Root    string    `mapstructure:"root"`    // 本地 artifact 根目录
	OSS     OSSConfig `mapstructure:"oss"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	KeyPrefix       string `mapstructure:"key_prefix"`
}

// EngineConfig 外部 AutoML 训练引擎
type EngineConfig struct {
	URL                 string `mapstructure:"url"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
	TimeoutMinutes      int    `mapstructure:"timeout_minutes"`
}

// TrainingConfig 训练策略默认值
type TrainingConfig struct {
	DefaultExperiment string   `mapstructure:"default_experiment"`
	DefaultMaxModels  int      `mapstructure:"default_max_models"`
	Seed              int64    `mapstructure:"seed"`
	BalanceClasses    bool     `mapstructure:"balance_classes"`
	SortMetric        string   `mapstructure:"sort_metric"`
	ExcludedAlgos     []string `mapstructure:"excluded_algos"`
}

type QueueConfig struct {
	TrainQueue string `mapstructure:"train_queue"`
	MaxWorkers int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "mlruns/tracking.db")
	viper.SetDefault("artifacts.backend", "local")
	viper.SetDefault("artifacts.root", "mlruns/artifacts")
	viper.SetDefault("engine.poll_interval_seconds", 5)
	viper.SetDefault("engine.timeout_minutes", 60)
	viper.SetDefault("training.default_experiment", "automl-insurance")
	viper.SetDefault("training.default_max_models", 10)
	viper.SetDefault("training.seed", 42)
	viper.SetDefault("training.balance_classes", true)
	viper.SetDefault("training.sort_metric", "logloss")
	viper.SetDefault("training.excluded_algos", []string{"GLM", "DRF"})
	viper.SetDefault("queue.train_queue", "train_jobs")
	viper.SetDefault("queue.max_workers", 1)
}
