package config

import "github.com/thomas-vilte/ticketmate/internal/storage"

// FileSource re-reads config.json (and the env overrides) on every call.
type FileSource struct {
	root *storage.Root
}

func NewFileSource(root *storage.Root) *FileSource {
	return &FileSource{root: root}
}

func (s *FileSource) LoadSettings() (*Config, error) {
	return LoadConfig(s.root)
}
