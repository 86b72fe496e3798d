package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Primary struct {
			DSN string `mapstructure:"dsn"`
		} `mapstructure:"primary"`
		Vector struct {
			DSN string `mapstructure:"dsn"` // DSN for the pgvector store
		} `mapstructure:"vector"`
	} `mapstructure:"database"`

	Storage struct {
		Provider  string `mapstructure:"provider"` // "r2" or "mock"
		Endpoint  string `mapstructure:"endpoint"` // R2 S3-compatible endpoint
		Region    string `mapstructure:"region"`
		Bucket    string `mapstructure:"bucket"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"storage"`

	Media struct {
		OpenAIAPIKey    string `mapstructure:"openai_api_key"`
		TranscriptModel string `mapstructure:"transcript_model"`
		SummaryModel    string `mapstructure:"summary_model"`
		SummaryPrompt   string `mapstructure:"summary_prompt"`
		EmbeddingModel  string `mapstructure:"embedding_model"`
		FFmpegPath      string `mapstructure:"ffmpeg_path"`
	} `mapstructure:"media"`

	Chunking struct {
		MaxTokens int `mapstructure:"max_tokens"`
		Overlap   int `mapstructure:"overlap"`
	} `mapstructure:"chunking"`

	Worker struct {
		PollIntervalSeconds int      `mapstructure:"poll_interval_seconds"`
		ErrorBackoffSeconds int      `mapstructure:"error_backoff_seconds"`
		Qualities           []string `mapstructure:"qualities"`
	} `mapstructure:"worker"`

	Serve struct {
		Addr string `mapstructure:"addr"`
		Port string `mapstructure:"port"`
	} `mapstructure:"serve"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	// Secrets come from the environment in deployed setups; the config file
	// only needs them for local development.
	viper.BindEnv("media.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("storage.access_key", "R2_ACCESS_KEY_ID")
	viper.BindEnv("storage.secret_key", "R2_SECRET_ACCESS_KEY")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed on defaults/env vars.
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("storage.provider", "mock")
	viper.SetDefault("storage.region", "auto")
	viper.SetDefault("media.transcript_model", "whisper-1")
	viper.SetDefault("media.summary_model", "gpt-4o-mini")
	viper.SetDefault("media.summary_prompt", "You are a helpful assistant that writes concise summaries of course lesson transcripts.")
	viper.SetDefault("media.embedding_model", "text-embedding-3-small")
	viper.SetDefault("media.ffmpeg_path", "ffmpeg")
	viper.SetDefault("chunking.max_tokens", 200)
	viper.SetDefault("chunking.overlap", 50)
	viper.SetDefault("worker.poll_interval_seconds", 5)
	viper.SetDefault("worker.error_backoff_seconds", 10)
	viper.SetDefault("worker.qualities", []string{"720p", "480p"})
	viper.SetDefault("serve.addr", "localhost")
	viper.SetDefault("serve.port", "8080")
}
