package config

import "path/filepath"

const (
	folderEnvVar        = "FOLDER"
	secureKeyFileEnvVar = "SIGNALS_SECURE_KEY_FILE"
)

type Storage struct {
	file FileConfig
}

var _ StorageConfig = Storage{}

func (s Storage) GetDataFolder() string {
	return GetEnv(folderEnvVar, firstNonEmpty(s.file.DataFolder, "./data"))
}

// GetDatabaseFile is the SQLite file backing the key/value store.
func (s Storage) GetDatabaseFile() string {
	return filepath.Join(s.GetDataFolder(), "signals.db")
}

func (s Storage) GetSecureStoreFolder() string {
	return filepath.Join(s.GetDataFolder(), "secure")
}

// GetSecureKeyFile is the key material for the encrypted credential tier.
// When the file is missing the credential store falls back to the key/value store.
func (s Storage) GetSecureKeyFile() string {
	return GetEnv(secureKeyFileEnvVar, firstNonEmpty(s.file.SecureKeyFile, filepath.Join(s.GetDataFolder(), "secure.key")))
}
