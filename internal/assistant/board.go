// Package assistant holds the latest research and analysis payloads published
// by the case assistant. Payloads are opaque JSON and are never interpreted.
package assistant

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/smallbiznis/chargedesk/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrEmptyUpdate    = errors.New("empty_update")
	ErrInvalidPayload = errors.New("invalid_payload")
)

// Update replaces the payloads that are present. A nil field leaves the
// current payload untouched.
type Update struct {
	Research json.RawMessage `json:"research,omitempty"`
	Analysis json.RawMessage `json:"analysis,omitempty"`
}

// Snapshot is the board as last published.
type Snapshot struct {
	Research          json.RawMessage `json:"research"`
	Analysis          json.RawMessage `json:"analysis"`
	ResearchUpdatedAt *time.Time      `json:"research_updated_at"`
	AnalysisUpdatedAt *time.Time      `json:"analysis_updated_at"`
}

type Params struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
}

type Board struct {
	mu    sync.RWMutex
	log   *zap.Logger
	clock clock.Clock
	state Snapshot
}

func NewBoard(p Params) *Board {
	c := p.Clock
	if c == nil {
		c = clock.System()
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Board{log: log.Named("assistant.board"), clock: c}
}

func (b *Board) Publish(u Update) (Snapshot, error) {
	if len(u.Research) == 0 && len(u.Analysis) == 0 {
		return Snapshot{}, ErrEmptyUpdate
	}
	for _, raw := range []json.RawMessage{u.Research, u.Analysis} {
		if len(raw) > 0 && !json.Valid(raw) {
			return Snapshot{}, ErrInvalidPayload
		}
	}

	now := b.clock.Now()

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(u.Research) > 0 {
		b.state.Research = clone(u.Research)
		b.state.ResearchUpdatedAt = &now
	}
	if len(u.Analysis) > 0 {
		b.state.Analysis = clone(u.Analysis)
		b.state.AnalysisUpdatedAt = &now
	}
	b.log.Debug("assistant payload published",
		zap.Bool("research", len(u.Research) > 0),
		zap.Bool("analysis", len(u.Analysis) > 0),
	)
	return b.snapshotLocked(), nil
}

func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

func (b *Board) snapshotLocked() Snapshot {
	s := Snapshot{
		Research: clone(b.state.Research),
		Analysis: clone(b.state.Analysis),
	}
	if b.state.ResearchUpdatedAt != nil {
		t := *b.state.ResearchUpdatedAt
		s.ResearchUpdatedAt = &t
	}
	if b.state.AnalysisUpdatedAt != nil {
		t := *b.state.AnalysisUpdatedAt
		s.AnalysisUpdatedAt = &t
	}
	if s.Research == nil {
		s.Research = json.RawMessage("null")
	}
	if s.Analysis == nil {
		s.Analysis = json.RawMessage("null")
	}
	return s
}

func clone(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
