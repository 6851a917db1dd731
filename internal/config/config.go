// Package config binds command-line flags and environment variables onto
// the app's runtime configuration, following the teacher's configVar
// pattern (flag + env key + default, bound through pflag/viper).
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "SYNCSERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SYNCSERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	logLevel = configVar[string]{
		envKey:       "SYNCSERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	uploadsDir = configVar[string]{
		envKey:       "SYNCSERVER_UPLOADS_DIR",
		flagKey:      "uploads-dir",
		defaultValue: "./data/uploads",
	}
	maxUploadSizeMB = configVar[int]{
		envKey:       "SYNCSERVER_MAX_UPLOAD_SIZE_MB",
		flagKey:      "max-upload-size-mb",
		defaultValue: 2048,
	}
	chatCap = configVar[int]{
		envKey:       "SYNCSERVER_CHAT_CAP",
		flagKey:      "chat-cap",
		defaultValue: 100,
	}
	joinChatSlice = configVar[int]{
		envKey:       "SYNCSERVER_JOIN_CHAT_SLICE",
		flagKey:      "join-chat-slice",
		defaultValue: 50,
	}
	reapIntervalSec = configVar[int]{
		envKey:       "SYNCSERVER_REAP_INTERVAL_SECONDS",
		flagKey:      "reap-interval-seconds",
		defaultValue: 60,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

// AppConfig is the fully resolved runtime configuration for the app.
type AppConfig struct {
	Host                string `json:"host"`
	Port                int    `json:"port"`
	LogLevel            string `json:"log_level"`
	UploadsDir          string `json:"uploads_dir"`
	MaxUploadSizeMB     int    `json:"max_upload_size_mb"`
	ChatCap             int    `json:"chat_cap"`
	JoinChatSlice       int    `json:"join_chat_slice"`
	ReapIntervalSeconds int    `json:"reap_interval_seconds"`
	RedisHost           string `json:"redis_host"`
	RedisPort           int    `json:"redis_port"`
	RedisPassword       string `json:"-"`
}

// Validate rejects configurations the app cannot run with.
func (cfg *AppConfig) Validate() error {
	if cfg.MaxUploadSizeMB < 1 {
		return fmt.Errorf("max upload size must be greater than 0")
	}
	if cfg.ChatCap < 1 {
		return fmt.Errorf("chat cap must be greater than 0")
	}
	return nil
}

// Load parses command-line flags (if not already parsed) and environment
// variables into an AppConfig, flags taking precedence over env, env over
// the defaults above.
func Load() *AppConfig {
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(uploadsDir.flagKey, uploadsDir.defaultValue, "Directory video uploads are stored under")
	pflag.Int(maxUploadSizeMB.flagKey, maxUploadSizeMB.defaultValue, "Maximum accepted upload size, in megabytes")
	pflag.Int(chatCap.flagKey, chatCap.defaultValue, "Maximum chat messages retained per room")
	pflag.Int(joinChatSlice.flagKey, joinChatSlice.defaultValue, "Chat messages sent to a member on join")
	pflag.Int(reapIntervalSec.flagKey, reapIntervalSec.defaultValue, "Seconds between idle-room reap sweeps")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	if !pflag.Parsed() {
		pflag.Parse()
	}

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(uploadsDir.flagKey, uploadsDir.envKey)
	viper.BindEnv(maxUploadSizeMB.flagKey, maxUploadSizeMB.envKey)
	viper.BindEnv(chatCap.flagKey, chatCap.envKey)
	viper.BindEnv(joinChatSlice.flagKey, joinChatSlice.envKey)
	viper.BindEnv(reapIntervalSec.flagKey, reapIntervalSec.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(uploadsDir.flagKey, uploadsDir.defaultValue)
	viper.SetDefault(maxUploadSizeMB.flagKey, maxUploadSizeMB.defaultValue)
	viper.SetDefault(chatCap.flagKey, chatCap.defaultValue)
	viper.SetDefault(joinChatSlice.flagKey, joinChatSlice.defaultValue)
	viper.SetDefault(reapIntervalSec.flagKey, reapIntervalSec.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	return &AppConfig{
		Host:                viper.GetString(host.flagKey),
		Port:                viper.GetInt(port.flagKey),
		LogLevel:            viper.GetString(logLevel.flagKey),
		UploadsDir:          viper.GetString(uploadsDir.flagKey),
		MaxUploadSizeMB:     viper.GetInt(maxUploadSizeMB.flagKey),
		ChatCap:             viper.GetInt(chatCap.flagKey),
		JoinChatSlice:       viper.GetInt(joinChatSlice.flagKey),
		ReapIntervalSeconds: viper.GetInt(reapIntervalSec.flagKey),
		RedisHost:           viper.GetString(redisHost.flagKey),
		RedisPort:           viper.GetInt(redisPort.flagKey),
		RedisPassword:       viper.GetString(redisPassword.flagKey),
	}
}
