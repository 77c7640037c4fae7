package connector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/utils"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownSource       = errors.New("unknown source type")
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrInvalidConnectionID = errors.New("connection name must not be empty")
)

// RequiredFields lists the credential keys each source type needs
var RequiredFields = map[models.SourceType][]string{
	models.Teradata:   {"host", "user", "password"},
	models.AzureSQL:   {"server", "database", "user", "password"},
	models.Databricks: {"workspace_url", "access_token"},
	models.MySQL:      {"host", "port", "user", "password", "database"},
	models.Postgres:   {"host", "port", "user", "password", "database"},
	models.SQLite:     {"file"},
}

// storeFile is the on-disk layout: source -> connection -> field -> ciphertext
type storeFile struct {
	Connections map[models.SourceType]map[string]map[string]string `yaml:"connections"`
}

// CredentialStore keeps encrypted connection credentials in a YAML file
type CredentialStore struct {
	Path      string
	encryptor *Encryptor
	data      storeFile
	Logger    *logrus.Logger
}

// OpenCredentialStore loads the store at path; a missing file yields an empty store
func OpenCredentialStore(path string, encryptor *Encryptor, logger *logrus.Logger) (*CredentialStore, error) {
	cs := &CredentialStore{
		Path:      path,
		encryptor: encryptor,
		data:      storeFile{Connections: make(map[models.SourceType]map[string]map[string]string)},
		Logger:    logger,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cs, nil
		}
		return nil, fmt.Errorf("read credential store: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cs.data); err != nil {
		return nil, fmt.Errorf("parse credential store: %w", err)
	}
	if cs.data.Connections == nil {
		cs.data.Connections = make(map[models.SourceType]map[string]map[string]string)
	}
	return cs, nil
}

// Store encrypts and saves the fields of a connection, replacing any previous values
func (cs *CredentialStore) Store(source models.SourceType, name string, fields map[string]string) error {
	required, ok := RequiredFields[source]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidConnectionID
	}
	if err := utils.ValidateRequiredFields(fields, required, cs.Logger); err != nil {
		return err
	}

	encrypted := make(map[string]string, len(fields))
	for key, value := range fields {
		ciphertext, err := cs.encryptor.Encrypt(value)
		if err != nil {
			return fmt.Errorf("encrypt %s: %w", key, err)
		}
		encrypted[key] = ciphertext
	}

	if cs.data.Connections[source] == nil {
		cs.data.Connections[source] = make(map[string]map[string]string)
	}
	cs.data.Connections[source][name] = encrypted
	cs.Logger.Infof("%s credentials saved/updated as '%s'", source.DisplayName(), name)
	return nil
}

// Get returns decrypted values for keys. Values that cannot be decrypted come back empty.
func (cs *CredentialStore) Get(source models.SourceType, name string, keys []string) (map[string]string, error) {
	conn, ok := cs.data.Connections[source][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrConnectionNotFound, source, name)
	}
	if keys == nil {
		keys = RequiredFields[source]
	}

	creds := make(map[string]string, len(keys))
	for _, key := range keys {
		ciphertext, present := conn[key]
		if !present {
			creds[key] = ""
			continue
		}
		plaintext, err := cs.encryptor.Decrypt(ciphertext)
		if err != nil {
			cs.Logger.Warningf("Could not decrypt %s for %s/%s: %v", key, source, name, err)
			plaintext = ""
		}
		creds[key] = plaintext
	}
	return creds, nil
}

// List returns the saved connection names for a source, sorted
func (cs *CredentialStore) List(source models.SourceType) []string {
	names := make([]string, 0, len(cs.data.Connections[source]))
	for name := range cs.data.Connections[source] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove deletes a saved connection
func (cs *CredentialStore) Remove(source models.SourceType, name string) error {
	if _, ok := cs.data.Connections[source][name]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrConnectionNotFound, source, name)
	}
	delete(cs.data.Connections[source], name)
	if len(cs.data.Connections[source]) == 0 {
		delete(cs.data.Connections, source)
	}
	return nil
}

// Save writes the store to disk
func (cs *CredentialStore) Save() error {
	if err := os.MkdirAll(filepath.Dir(cs.Path), 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	raw, err := yaml.Marshal(&cs.data)
	if err != nil {
		return fmt.Errorf("marshal credential store: %w", err)
	}
	if err := os.WriteFile(cs.Path, raw, 0o600); err != nil {
		return fmt.Errorf("write credential store: %w", err)
	}
	return nil
}
