package connector

import (
	"context"
	"fmt"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/config"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/sirupsen/logrus"
)

// Session carries everything one command invocation or API request needs.
// It is created at request start and closed at request end; nothing in it is
// shared process-wide.
type Session struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Store      *CredentialStore
	connectors []*DatabaseConnector
}

// NewSession loads the encryption key and the credential store
func NewSession(cfg *config.Config, logger *logrus.Logger) (*Session, error) {
	encryptor, err := LoadEncryptor(cfg.KeyPath)
	if err != nil {
		return nil, err
	}
	return NewSessionWithEncryptor(cfg, encryptor, logger)
}

// NewSessionWithEncryptor opens the credential store with an already loaded key
func NewSessionWithEncryptor(cfg *config.Config, encryptor *Encryptor, logger *logrus.Logger) (*Session, error) {
	store, err := OpenCredentialStore(cfg.StorePath, encryptor, logger)
	if err != nil {
		return nil, err
	}
	return &Session{Config: cfg, Logger: logger, Store: store}, nil
}

// SavedConnections lists the connection names stored for a source
func (s *Session) SavedConnections(source models.SourceType) []string {
	return s.Store.List(source)
}

// Connector opens a database connection for a saved connection. It is closed with the session.
func (s *Session) Connector(ctx context.Context, source models.SourceType, name string) (*DatabaseConnector, error) {
	creds, err := s.Store.Get(source, name, nil)
	if err != nil {
		return nil, err
	}
	dc := NewDatabaseConnector(source, name, creds, s.Logger)
	if err := dc.Connect(ctx); err != nil {
		return nil, err
	}
	s.connectors = append(s.connectors, dc)
	return dc, nil
}

// Databricks returns a REST client for a saved Databricks connection
func (s *Session) Databricks(name string) (*DatabricksClient, error) {
	creds, err := s.Store.Get(models.Databricks, name, nil)
	if err != nil {
		return nil, err
	}
	if creds["workspace_url"] == "" || creds["access_token"] == "" {
		return nil, fmt.Errorf("databricks connection '%s' has no usable credentials", name)
	}
	return NewDatabricksClient(creds["workspace_url"], creds["access_token"], s.Logger), nil
}

// Close releases every connection opened during the session
func (s *Session) Close() {
	for _, dc := range s.connectors {
		dc.Disconnect()
	}
	s.connectors = nil
}
