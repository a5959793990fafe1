package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Dataset     DatasetConfig
	LLM         LLMConfig
	Translation TranslationConfig
	Internet    InternetConfig
	RAG         RAGConfig
	Proximity   ProximityConfig
	Responses   ResponsesConfig
	Offline     OfflineConfig
	Topics      []TopicConfig
	Places      []PlaceConfig
	Protected   []string `mapstructure:"protectedPlaces"`
	Profanity   []string
	Redis       RedisConfig
	SQLite      SQLiteConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	BodyLimit       int
	MaxPromptLength int
}

type DatasetConfig struct {
	Path     string
	StoreDir string
}

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
	TimeoutSec     int
	PromptTemplate string
}

type TranslationConfig struct {
	Enabled    bool
	TargetLang string
	TimeoutSec int
}

type InternetConfig struct {
	TestURL          string
	TimeoutSec       int
	CacheDurationSec int
}

type RAGConfig struct {
	SearchResults       int
	ConfidenceThreshold float64
	MultiTopicThreshold float64
	ResultsPerTopic     int
	SimilarityThreshold float64
}

type ProximityConfig struct {
	MaxDistanceKm float64
}

type ResponsesConfig struct {
	Refusal       string
	NoInformation string
	NotSure       string
	NoTopicInfo   string
}

type OfflineConfig struct {
	Message  string
	Fallback string
}

// Topics and places are configured as ordered lists rather than maps: topic
// order drives multi-topic search order, and viper lowercases map keys which
// would mangle place names.
type TopicConfig struct {
	Name     string
	Keywords []string
}

type PlaceConfig struct {
	Name string
	Lat  float64
	Lng  float64
	Type string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type SQLiteConfig struct {
	Path string
}

type RateLimitConfig struct {
	ChatPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/pathfinder")

	viper.SetEnvPrefix("PATHFINDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks the loaded configuration eagerly so that missing keys fail
// at startup instead of at query time.
func (c *Config) Validate() error {
	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}
	if c.Dataset.StoreDir == "" {
		return fmt.Errorf("dataset.storeDir is required")
	}
	if len(c.Topics) == 0 {
		return fmt.Errorf("at least one topic must be configured")
	}
	for _, t := range c.Topics {
		if t.Name == "" {
			return fmt.Errorf("topic with empty name")
		}
		if len(t.Keywords) == 0 {
			return fmt.Errorf("topic %q has no keywords", t.Name)
		}
	}
	if len(c.Places) == 0 {
		return fmt.Errorf("at least one place must be configured")
	}
	seen := make(map[string]bool, len(c.Places))
	for _, p := range c.Places {
		if p.Name == "" {
			return fmt.Errorf("place with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate place %q", p.Name)
		}
		seen[p.Name] = true
		if p.Lat < -90 || p.Lat > 90 {
			return fmt.Errorf("place %q: latitude %v out of range", p.Name, p.Lat)
		}
		if p.Lng < -180 || p.Lng > 180 {
			return fmt.Errorf("place %q: longitude %v out of range", p.Name, p.Lng)
		}
	}
	if c.RAG.SearchResults <= 0 {
		return fmt.Errorf("rag.searchResults must be positive")
	}
	if c.RAG.ResultsPerTopic <= 0 {
		return fmt.Errorf("rag.resultsPerTopic must be positive")
	}
	if c.RAG.ConfidenceThreshold <= 0 || c.RAG.MultiTopicThreshold <= 0 {
		return fmt.Errorf("rag thresholds must be positive")
	}
	if c.RAG.SimilarityThreshold <= 0 || c.RAG.SimilarityThreshold > 1 {
		return fmt.Errorf("rag.similarityThreshold must be in (0, 1]")
	}
	if c.Proximity.MaxDistanceKm <= 0 {
		return fmt.Errorf("proximity.maxDistanceKm must be positive")
	}
	// Sentinel replies are recognized downstream by substring match, so the
	// configured templates must carry the markers.
	if !strings.Contains(strings.ToLower(c.Responses.NoInformation), "don't have information") {
		return fmt.Errorf(`responses.noInformation must contain "don't have information"`)
	}
	if !strings.Contains(strings.ToLower(c.Responses.NotSure), "not sure") {
		return fmt.Errorf(`responses.notSure must contain "not sure"`)
	}
	if !strings.Contains(c.Offline.Message, "{fact}") {
		return fmt.Errorf("offline.message must contain a {fact} placeholder")
	}
	if !strings.Contains(c.Offline.Fallback, "{fact}") {
		return fmt.Errorf("offline.fallback must contain a {fact} placeholder")
	}
	if c.LLM.PromptTemplate != "" {
		if !strings.Contains(c.LLM.PromptTemplate, "{question}") || !strings.Contains(c.LLM.PromptTemplate, "{fact}") {
			return fmt.Errorf("llm.promptTemplate must contain {question} and {fact} placeholders")
		}
	}
	return nil
}

// PlaceByName returns the configured place record for name, if any.
func (c *Config) PlaceByName(name string) (PlaceConfig, bool) {
	for _, p := range c.Places {
		if p.Name == name {
			return p, true
		}
	}
	return PlaceConfig{}, false
}

func (c InternetConfig) CacheDuration() time.Duration {
	return time.Duration(c.CacheDurationSec) * time.Second
}

func (c InternetConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)
	viper.SetDefault("server.maxPromptLength", 2000)

	viper.SetDefault("dataset.path", "./data/dataset.json")
	viper.SetDefault("dataset.storeDir", "./data/vector_store")

	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-small")
	viper.SetDefault("llm.temperature", 0.4)
	viper.SetDefault("llm.maxTokens", 512)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("translation.enabled", true)
	viper.SetDefault("translation.targetLang", "en")
	viper.SetDefault("translation.timeoutSec", 5)

	viper.SetDefault("internet.testUrl", "https://www.google.com")
	viper.SetDefault("internet.timeoutSec", 3)
	viper.SetDefault("internet.cacheDurationSec", 60)

	viper.SetDefault("rag.searchResults", 3)
	viper.SetDefault("rag.confidenceThreshold", 0.65)
	viper.SetDefault("rag.multiTopicThreshold", 0.85)
	viper.SetDefault("rag.resultsPerTopic", 3)
	viper.SetDefault("rag.similarityThreshold", 0.85)

	viper.SetDefault("proximity.maxDistanceKm", 20.0)

	viper.SetDefault("responses.refusal",
		"I am unable to process that language. Please ask your question politely so I can assist you with Catanduanes tourism.")
	viper.SetDefault("responses.noInformation",
		"I don't have information about that. Ask about beaches, food, or activities!")
	viper.SetDefault("responses.notSure",
		"I'm not sure about that. Can you rephrase or ask about Catanduanes tourism?")
	viper.SetDefault("responses.noTopicInfo",
		"I don't have info about those topics")

	viper.SetDefault("offline.message",
		"I'm currently offline. {fact}")
	viper.SetDefault("offline.fallback",
		"Here's what I know: {fact}")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 3600)

	viper.SetDefault("sqlite.path", "./data/pathfinder.db")

	viper.SetDefault("ratelimit.chatPerMinute", 20)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
