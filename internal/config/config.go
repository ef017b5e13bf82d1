package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyfeng16/depth-estimator/internal/templates"
	"github.com/cyfeng16/depth-estimator/internal/utils/pathutil"
	"github.com/cyfeng16/depth-estimator/internal/utils/portutil"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	FilesystemLocal = "local"
	FilesystemS3    = "s3"
)

const envPrefix = "DEPTH"

type Config struct {
	Host         string    `mapstructure:"host"`
	Port         int       `mapstructure:"port"`
	Environment  string    `mapstructure:"environment"`
	HomeDir      string    `mapstructure:"home_dir"`
	AssetsDir    string    `mapstructure:"assets_dir"`
	ModelsDir    string    `mapstructure:"models_dir"`
	TempDir      string    `mapstructure:"temp_dir"`
	PublicDir    string    `mapstructure:"public_dir"`
	ModelID      string    `mapstructure:"model_id"`
	WarmupModels []string  `mapstructure:"warmup_models"`
	LaunchWorker bool      `mapstructure:"launch_worker"`
	WorkerCmd    string    `mapstructure:"worker_cmd"`
	WorkerHost   string    `mapstructure:"worker_host"`
	TcpPort      int       `mapstructure:"tcp_port"`
	TcpTimeout   int       `mapstructure:"tcp_timeout"`
	Filesystem   string    `mapstructure:"filesystem_type"`
	S3           *S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Folder      string `mapstructure:"folder"`
	Region      string `mapstructure:"region_name"`
	Bucket      string `mapstructure:"bucket_name"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	EndpointUrl string `mapstructure:"endpoint_url"`
	VanityUrl   string `mapstructure:"vanity_url"`
}

var config *Config

// InitConfig resolves the app home, scaffolds it on first run, loads .env
// and config.yaml, and applies the built-in defaults. CLI flags and
// DEPTH_* environment variables take precedence over the file.
func InitConfig() error {
	homeDir, err := getHomeDir()
	if err != nil {
		return err
	}

	assetsDir, err := getSubDir(homeDir, "assets_dir", "assets")
	if err != nil {
		return err
	}

	modelsDir, err := getSubDir(homeDir, "models_dir", "models")
	if err != nil {
		return err
	}

	tempDir, err := getSubDir(homeDir, "temp_dir", "temp")
	if err != nil {
		return err
	}

	publicDir, err := getSubDir(homeDir, "public_dir", "public")
	if err != nil {
		return err
	}

	if err := createHomeDirs(homeDir, assetsDir, modelsDir, tempDir, publicDir); err != nil {
		return err
	}

	viper.Set("home_dir", homeDir)
	viper.Set("assets_dir", assetsDir)
	viper.Set("models_dir", modelsDir)
	viper.Set("temp_dir", tempDir)
	viper.Set("public_dir", publicDir)

	envFile := filepath.Join(homeDir, ".env")
	if custom := viper.GetString("env_file"); custom != "" {
		if envFile, err = pathutil.ExpandPath(custom); err != nil {
			return fmt.Errorf("failed to expand env file path: %w", err)
		}
	}

	configFile := filepath.Join(homeDir, "config.yaml")
	if custom := viper.GetString("config_file"); custom != "" {
		if configFile, err = pathutil.ExpandPath(custom); err != nil {
			return fmt.Errorf("failed to expand config file path: %w", err)
		}
	}

	if _, err := os.Stat(envFile); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat .env file: %w", err)
		}

		if err := templates.WriteEnv(envFile); err != nil {
			return fmt.Errorf("failed to create .env file: %w", err)
		}
	}

	if _, err := os.Stat(configFile); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config.yaml file: %w", err)
		}

		if err := templates.WriteConfig(configFile); err != nil {
			return fmt.Errorf("failed to create config.yaml file: %w", err)
		}
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	viper.SetConfigFile(configFile)

	// Nested keys are only picked up from the environment when bound.
	// Example: DEPTH_S3_ACCESS_KEY
	viper.BindEnv("s3.folder")
	viper.BindEnv("s3.region_name")
	viper.BindEnv("s3.bucket_name")
	viper.BindEnv("s3.access_key")
	viper.BindEnv("s3.secret_key")
	viper.BindEnv("s3.endpoint_url")
	viper.BindEnv("s3.vanity_url")

	if err := LoadConfig(false); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			fmt.Println("No config file found. Using default config.")
		} else {
			return err
		}
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("host", DefaultHost)
	viper.SetDefault("port", portutil.FromName(AppName))
	viper.SetDefault("environment", DefaultEnvironment)
	viper.SetDefault("model_id", DefaultModelID)
	viper.SetDefault("filesystem_type", FilesystemLocal)
	viper.SetDefault("launch_worker", true)
	viper.SetDefault("worker_cmd", DefaultWorkerCmd)
	viper.SetDefault("worker_host", DefaultWorkerHost)
	viper.SetDefault("tcp_port", TCPPort)
	viper.SetDefault("tcp_timeout", DefaultTcpTimeout)
}

func LoadConfig(reload bool) error {
	if config != nil && !reload {
		return fmt.Errorf("config already loaded")
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}

	config = &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	return nil
}

func GetConfig() *Config {
	if config == nil {
		panic("config not loaded")
	}

	return config
}

// Returns the app home directory path, from the following sources in order:
// 1. The `home_dir` flag from viper.
// 2. The `DEPTH_HOME` environment variable.
// 3. The built-in default.
func getHomeDir() (string, error) {
	homeDir := viper.GetString("home_dir")
	if homeDir == "" {
		homeDir = os.Getenv("DEPTH_HOME")
		if homeDir == "" {
			homeDir = DefaultHomeDir
		}
	}

	homeDir, err := pathutil.ExpandPath(homeDir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrHomeDirExpandFailed, err)
	}

	return homeDir, nil
}

func getSubDir(homeDir, key, name string) (string, error) {
	if homeDir == "" {
		return "", ErrHomeDirNotSet
	}

	dir := viper.GetString(key)
	if dir == "" {
		dir = filepath.Join(homeDir, name)
	}

	dir, err := pathutil.ExpandPath(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrHomeDirExpandFailed, err)
	}

	return dir, nil
}

func createHomeDirs(homeDir string, subdirs ...string) error {
	if err := os.MkdirAll(homeDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}

	for _, dir := range subdirs {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}
