package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/autosuggest/data/db/documents.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/autosuggest/data/indices/bleve"
	}
	if cfg.Autosuggest.IndexName == "" {
		cfg.Autosuggest.IndexName = "autosuggest-post"
	}
	if cfg.Autosuggest.MinGram == 0 {
		cfg.Autosuggest.MinGram = 1
	}
	if cfg.Autosuggest.MaxGram == 0 {
		cfg.Autosuggest.MaxGram = 20
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".json", ".yaml", ".yml", ".txt", ".md", ".pdf", ".docx", ".xlsx", ".rtf", ".odt"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
