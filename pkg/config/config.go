package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		EmbedModel  string  `yaml:"embed_model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		TimeoutSecs int     `yaml:"timeout_secs"`
	} `yaml:"llm"`

	Database struct {
		URL       string `yaml:"url"`
		VectorDim int    `yaml:"vector_dim"`
	} `yaml:"database"`

	Chunker struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
	} `yaml:"chunker"`

	Uploads struct {
		Dir               string   `yaml:"dir"`
		MaxFileSize       int64    `yaml:"max_file_size"`
		AllowedExtensions []string `yaml:"allowed_extensions"`
	} `yaml:"uploads"`

	Retrieval struct {
		MaxChunks int `yaml:"max_chunks"`
	} `yaml:"retrieval"`
}

func LoadConfig(path string) (*Config, error) {
	// A local .env can supply OLLAMA_BASE_URL / DATABASE_URL.
	_ = godotenv.Load()

	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/legalbot/config.yaml"),
			"/etc/legalbot/config.yaml",
		}
		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.Model == "" {
		config.LLM.Model = "mistral:7b-instruct"
	}
	if config.LLM.EmbedModel == "" {
		config.LLM.EmbedModel = "all-minilm"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 400
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.TimeoutSecs == 0 {
		config.LLM.TimeoutSecs = 300
	}

	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 384
	}

	if config.Chunker.ChunkSize == 0 {
		config.Chunker.ChunkSize = 800
	}
	if config.Chunker.ChunkOverlap == 0 {
		config.Chunker.ChunkOverlap = 200
	}

	if config.Uploads.Dir == "" {
		config.Uploads.Dir = "uploads"
	}
	if config.Uploads.MaxFileSize == 0 {
		config.Uploads.MaxFileSize = 50 << 20
	}
	if len(config.Uploads.AllowedExtensions) == 0 {
		config.Uploads.AllowedExtensions = []string{".pdf", ".docx", ".doc", ".txt", ".md", ".html", ".htm"}
	}

	if config.Retrieval.MaxChunks == 0 {
		config.Retrieval.MaxChunks = 5
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if dir := os.Getenv("LEGALBOT_UPLOAD_DIR"); dir != "" {
		config.Uploads.Dir = dir
	}
}
