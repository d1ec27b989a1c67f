// Package filestore keeps every guild's ledger in one JSON document on disk.
// Units of work of a store run one at a time; a commit rewrites the whole
// document through a temp file and a rename.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"pointsbot/application"
	"pointsbot/domain"
	"pointsbot/domain/entities"
	"pointsbot/events"

	log "github.com/sirupsen/logrus"
)

// document is the persisted layout
type document struct {
	Guilds            map[string]*guildDocument `json:"guilds"`
	NextTransactionID int64                     `json:"next_transaction_id"`
}

type guildDocument struct {
	Accounts              map[string]*entities.Account       `json:"accounts"`
	Transactions          []*entities.Transaction            `json:"transactions"`
	RoleThresholds        map[string]*entities.RoleThreshold `json:"role_thresholds"`
	NotificationChannelID *int64                             `json:"notification_channel_id,omitempty"`
	DefaultTiersSeeded    bool                               `json:"default_tiers_seeded"`
}

func newDocument() *document {
	return &document{
		Guilds:            make(map[string]*guildDocument),
		NextTransactionID: 1,
	}
}

func newGuildDocument() *guildDocument {
	return &guildDocument{
		Accounts:       make(map[string]*entities.Account),
		Transactions:   make([]*entities.Transaction, 0),
		RoleThresholds: make(map[string]*entities.RoleThreshold),
	}
}

func key(id int64) string {
	return strconv.FormatInt(id, 10)
}

// clone deep-copies the document so a unit of work can be thrown away
func (d *document) clone() *document {
	c := &document{
		Guilds:            make(map[string]*guildDocument, len(d.Guilds)),
		NextTransactionID: d.NextTransactionID,
	}
	for id, g := range d.Guilds {
		c.Guilds[id] = g.clone()
	}
	return c
}

func (g *guildDocument) clone() *guildDocument {
	c := &guildDocument{
		Accounts:           make(map[string]*entities.Account, len(g.Accounts)),
		Transactions:       make([]*entities.Transaction, 0, len(g.Transactions)),
		RoleThresholds:     make(map[string]*entities.RoleThreshold, len(g.RoleThresholds)),
		DefaultTiersSeeded: g.DefaultTiersSeeded,
	}
	for id, account := range g.Accounts {
		copied := *account
		c.Accounts[id] = &copied
	}
	for _, tx := range g.Transactions {
		copied := *tx
		if tx.ActorID != nil {
			actor := *tx.ActorID
			copied.ActorID = &actor
		}
		c.Transactions = append(c.Transactions, &copied)
	}
	for points, threshold := range g.RoleThresholds {
		copied := *threshold
		c.RoleThresholds[points] = &copied
	}
	if g.NotificationChannelID != nil {
		channelID := *g.NotificationChannelID
		c.NotificationChannelID = &channelID
	}
	return c
}

// Store is a JSON document store implementing application.UnitOfWorkFactory
type Store struct {
	path string
	bus  *events.Bus
	now  func() time.Time

	// sem admits one unit of work at a time; doc is only touched while holding it
	sem chan struct{}
	doc *document
}

// Open loads the document at path, starting empty when the file does not exist yet.
// Events raised inside a unit of work reach bus after it commits; bus may be nil.
func Open(path string, bus *events.Bus) (*Store, error) {
	s := &Store{
		path: path,
		bus:  bus,
		now:  func() time.Time { return time.Now().UTC() },
		sem:  make(chan struct{}, 1),
		doc:  newDocument(),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.WithField("path", path).Info("Data file not found, starting with an empty store")
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read data file: %w: %w", domain.ErrStorageUnavailable, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, s.doc); err != nil {
			return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
		}
	}
	if s.doc.Guilds == nil {
		s.doc.Guilds = make(map[string]*guildDocument)
	}
	if s.doc.NextTransactionID < 1 {
		s.doc.NextTransactionID = 1
	}
	for _, g := range s.doc.Guilds {
		g.normalize()
	}

	log.WithFields(log.Fields{
		"path":   path,
		"guilds": len(s.doc.Guilds),
	}).Info("Loaded data file")

	return s, nil
}

func (g *guildDocument) normalize() {
	if g.Accounts == nil {
		g.Accounts = make(map[string]*entities.Account)
	}
	if g.Transactions == nil {
		g.Transactions = make([]*entities.Transaction, 0)
	}
	if g.RoleThresholds == nil {
		g.RoleThresholds = make(map[string]*entities.RoleThreshold)
	}
}

// Close waits for the running unit of work, if any, and releases the store
func (s *Store) Close() error {
	s.sem <- struct{}{}
	return nil
}

// CreateForGuild creates a new UnitOfWork scoped to a guild
func (s *Store) CreateForGuild(guildID int64) application.UnitOfWork {
	return &unitOfWork{
		store:            s,
		guildID:          guildID,
		transactionalBus: events.NewTransactionalBus(s.bus),
	}
}

// acquire waits for the store, giving up when ctx ends
func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to acquire store: %w: %w", domain.ErrStorageUnavailable, ctx.Err())
	}
}

func (s *Store) release() {
	<-s.sem
}

// write replaces the data file with doc
func (s *Store) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}

	return nil
}
