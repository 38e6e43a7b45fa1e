package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
channel_id: "-1001234567890"
timezone: "Europe/Rome"
archive_feed: "https://us1.campaign-archive.com/feed?u=abc&id=def"

senders:
  - "newsletter@spazioalfieri.it"

selectors:
  title: "h2"
  container: "div.film"

settings:
  enabled: true
  scan_interval: 3600
  timeout: 15
`

	err := os.WriteFile(filepath.Join(tempDir, "spazio-alfieri.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("spazio-alfieri")
	if err != nil {
		t.Fatal(err)
	}

	if config.Name != "spazio-alfieri" {
		t.Errorf("Expected name 'spazio-alfieri', got '%s'", config.Name)
	}
	if config.ChannelID != "-1001234567890" {
		t.Errorf("Expected channel '-1001234567890', got '%s'", config.ChannelID)
	}
	if config.Selectors.Title != "h2" {
		t.Errorf("Expected title selector 'h2', got '%s'", config.Selectors.Title)
	}
	if config.Selectors.Container != "div.film" {
		t.Errorf("Expected container selector 'div.film', got '%s'", config.Selectors.Container)
	}
	if config.Settings.ScanInterval != 3600 {
		t.Errorf("Expected scan interval 3600, got %d", config.Settings.ScanInterval)
	}
	if len(config.Senders) != 1 {
		t.Errorf("Expected 1 sender, got %d", len(config.Senders))
	}
	if config.Location().String() != "Europe/Rome" {
		t.Errorf("Expected Europe/Rome location, got %v", config.Location())
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
channel_id: "-1001234567890"

settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "test.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if config.Timezone != "Europe/Rome" {
		t.Errorf("Expected default timezone 'Europe/Rome', got '%s'", config.Timezone)
	}
	if config.Selectors.Title != "h1" {
		t.Errorf("Expected default title selector 'h1', got '%s'", config.Selectors.Title)
	}
	if config.Selectors.Container != "tbody" {
		t.Errorf("Expected default container selector 'tbody', got '%s'", config.Selectors.Container)
	}
	if time.Duration(config.Settings.ScanInterval)*time.Second != 21600*time.Second {
		t.Errorf("Expected default scan interval 21600s, got %v", time.Duration(config.Settings.ScanInterval)*time.Second)
	}
	if config.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", config.Settings.Timeout)
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	tempDir := t.TempDir()

	// Missing channel_id
	content := `
settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "invalid.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err == nil {
		t.Error("Expected error for config without channel_id")
	}
}

func TestConfigCacheInvalidTimezone(t *testing.T) {
	tempDir := t.TempDir()

	content := `
channel_id: "-1001234567890"
timezone: "Europe/Atlantide"
`

	err := os.WriteFile(filepath.Join(tempDir, "invalid.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err == nil {
		t.Error("Expected error for unknown timezone")
	}
}

func TestConfigCacheEmptyDirectory(t *testing.T) {
	tempDir := t.TempDir()

	configCache := NewConfigCache(tempDir)
	err := configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs from empty directory, got %d", configCache.GetConfigCount())
	}

	_, err = configCache.GetConfig("any-source")
	if err == nil {
		t.Error("Expected error for source name in empty cache, got none")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected error message to contain 'not found', got: %v", err)
	}
}

func TestConfigCacheReloadConfig(t *testing.T) {
	tempDir := t.TempDir()

	initialContent := `
channel_id: "-1001234567890"

settings:
  enabled: true
`

	configFile := filepath.Join(tempDir, "test.yml")
	err := os.WriteFile(configFile, []byte(initialContent), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	updatedContent := `
channel_id: "-1009876543210"

settings:
  enabled: true
  scan_interval: 7200
`

	err = os.WriteFile(configFile, []byte(updatedContent), 0644)
	if err != nil {
		t.Fatal(err)
	}

	reloadedConfig, err := configCache.LoadConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if reloadedConfig.ChannelID != "-1009876543210" {
		t.Errorf("Expected updated channel '-1009876543210', got '%s'", reloadedConfig.ChannelID)
	}
	if reloadedConfig.Settings.ScanInterval != 7200 {
		t.Errorf("Expected updated scan_interval 7200, got %d", reloadedConfig.Settings.ScanInterval)
	}

	_, err = configCache.LoadConfig("nonexistent")
	if err == nil {
		t.Error("Expected error for non-existent config")
	}
}

func TestConfigCacheGetEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()

	configs := []struct {
		filename string
		content  string
	}{
		{
			"enabled-venue.yml",
			`
channel_id: "-100111"
settings:
  enabled: true
`,
		},
		{
			"disabled-venue.yml",
			`
channel_id: "-100222"
settings:
  enabled: false
`,
		},
	}

	for _, config := range configs {
		err := os.WriteFile(filepath.Join(tempDir, config.filename), []byte(config.content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	configCache := NewConfigCache(tempDir)
	err := configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabled))
	}
	if _, ok := enabled["enabled-venue"]; !ok {
		t.Error("Expected 'enabled-venue' in enabled configs")
	}

	// GetConfigs returns a copy
	allConfigs := configCache.GetConfigs()
	if len(allConfigs) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(allConfigs))
	}
	delete(allConfigs, "enabled-venue")
	if configCache.GetConfigCount() != 2 {
		t.Error("Modifying returned configs map affected the cache")
	}
}

func TestConfigAllowsSender(t *testing.T) {
	config := &Config{
		Senders: []string{"newsletter@spazioalfieri.it"},
	}

	if !config.AllowsSender("Spazio Alfieri <Newsletter@SpazioAlfieri.it>") {
		t.Error("Expected allow-list match to be case-insensitive and tolerate display names")
	}
	if config.AllowsSender("Someone Else <other@example.com>") {
		t.Error("Expected unlisted sender to be rejected")
	}

	open := &Config{}
	if !open.AllowsSender("anyone@example.com") {
		t.Error("Expected empty allow-list to accept any sender")
	}
}

func TestConfigCacheValidateConfigNil(t *testing.T) {
	configCache := NewConfigCache("")
	err := configCache.validateConfig(nil)
	if err == nil {
		t.Error("Expected error for nil config, got none")
	}
}

func TestConfigCacheValidateConfigNegativeValues(t *testing.T) {
	configCache := NewConfigCache("")

	config := &Config{
		Name:      "test-venue",
		ChannelID: "-100111",
		Timezone:  "Europe/Rome",
	}

	config.Settings.ScanInterval = -1
	err := configCache.validateConfig(config)
	if err == nil {
		t.Error("Expected error for negative scan interval, got none")
	}

	config.Settings.ScanInterval = 3600
	config.Settings.Timeout = -1
	err = configCache.validateConfig(config)
	if err == nil {
		t.Error("Expected error for negative timeout, got none")
	}
}
