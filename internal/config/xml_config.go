// Package config provides XML-based configuration for the PO scanner server.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"POScanner"`

	Server      ServerConfig      `xml:"Server"`
	Storage     StorageConfig     `xml:"Storage"`
	Extraction  ExtractionConfig  `xml:"Extraction"`
	ObjectStore ObjectStoreConfig `xml:"ObjectStore"`
	Advanced    AdvancedConfig    `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains local file locations
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	UploadsDirectory string `xml:"UploadsDirectory"`
	OutputDirectory  string `xml:"OutputDirectory"`
	DeleteAfterScan  bool   `xml:"DeleteAfterScan"`
}

// ExtractionConfig points at the document extraction service
type ExtractionConfig struct {
	Endpoint       string `xml:"Endpoint"`
	APIKey         string `xml:"APIKey"`
	TimeoutSeconds int    `xml:"TimeoutSeconds"`
}

// ObjectStoreConfig enables mirroring of output files to S3-compatible storage
type ObjectStoreConfig struct {
	Enabled   bool   `xml:"Enabled"`
	Endpoint  string `xml:"Endpoint"`
	AccessKey string `xml:"AccessKey"`
	SecretKey string `xml:"SecretKey"`
	UseSSL    bool   `xml:"UseSSL"`
	Region    string `xml:"Region"`
	Bucket    string `xml:"Bucket"`
	Prefix    string `xml:"Prefix"`
}

// AdvancedConfig contains logging and tracing options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	Tracing              bool   `xml:"Tracing"`
	TracingEndpoint      string `xml:"TracingEndpoint"`
	TracingInsecure      bool   `xml:"TracingInsecure"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         5000,
			BindAddress:  "0.0.0.0",
			EnableCORS:   false,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 180,
			IdleTimeout:  120,
			BodyLimit:    "32M",
		},
		Storage: StorageConfig{
			DataDirectory:    ".",
			UploadsDirectory: "uploads",
			OutputDirectory:  "outputs",
		},
		Extraction: ExtractionConfig{
			Endpoint:       "http://localhost:8000",
			TimeoutSeconds: 120,
		},
		ObjectStore: ObjectStoreConfig{
			Enabled: false,
			Bucket:  "po-scanner",
			Prefix:  "outputs",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			TracingEndpoint:      "localhost:4317",
			TracingInsecure:      true,
		},
	}
}

// LoadConfig loads configuration from an XML file. A missing file is created
// with defaults.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- PO Scanner Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}
	if endpoint := os.Getenv("EXTRACTOR_URL"); endpoint != "" {
		c.Extraction.Endpoint = endpoint
	}
	if key := os.Getenv("EXTRACTOR_API_KEY"); key != "" {
		c.Extraction.APIKey = key
	}
}

// resolvePaths anchors the data directory at configDir and the upload and
// output directories at the data directory.
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.UploadsDirectory) {
		c.Storage.UploadsDirectory = filepath.Join(c.Storage.DataDirectory, c.Storage.UploadsDirectory)
	}
	if !filepath.IsAbs(c.Storage.OutputDirectory) {
		c.Storage.OutputDirectory = filepath.Join(c.Storage.DataDirectory, c.Storage.OutputDirectory)
	}
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetOutputDir returns the absolute outputs directory path
func (c *AppConfig) GetOutputDir() string {
	return c.Storage.OutputDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// ExtractionTimeout returns the per-document extraction deadline.
func (c *AppConfig) ExtractionTimeout() time.Duration {
	if c.Extraction.TimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.Extraction.TimeoutSeconds) * time.Second
}

// Verbosity maps LogLevel onto a klog -v level. Unknown levels log at 0.
func (c *AppConfig) Verbosity() int {
	level := strings.ToLower(strings.TrimSpace(c.Advanced.LogLevel))
	if n, err := strconv.Atoi(level); err == nil && n >= 0 {
		return n
	}
	switch level {
	case "debug":
		return 2
	case "trace":
		return 4
	default:
		return 0
	}
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		c.Storage.OutputDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
