package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("match record not found")

// MatchRecord is the persisted canonical match row. The full engine state is
// stored as a JSON blob; the scalar columns exist for querying.
type MatchRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"size:6;index"`
	Status    string    `gorm:"size:16;index"`
	Winner    int
	Round     int
	State     []byte `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repo interface {
	Save(ctx context.Context, rec *MatchRecord) error
	Find(ctx context.Context, id uuid.UUID) (*MatchRecord, error)
}

// Postgres persists match records through gorm.
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MatchRecord{}); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Save(ctx context.Context, rec *MatchRecord) error {
	return p.db.WithContext(ctx).Save(rec).Error
}

func (p *Postgres) Find(ctx context.Context, id uuid.UUID) (*MatchRecord, error) {
	var rec MatchRecord
	err := p.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Memory is the repo used when no DATABASE_URL is configured, and in tests.
type Memory struct {
	mu   sync.Mutex
	recs map[uuid.UUID]MatchRecord
}

func NewMemory() *Memory {
	return &Memory{recs: make(map[uuid.UUID]MatchRecord)}
}

func (m *Memory) Save(_ context.Context, rec *MatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if existing, ok := m.recs[rec.ID]; ok {
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.recs[rec.ID] = *rec
	return nil
}

func (m *Memory) Find(_ context.Context, id uuid.UUID) (*MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}
