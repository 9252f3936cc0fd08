// Package caseview drives the analyst's case list: one retrieval per mount,
// rendered as summary cards or as an explicit empty or error state.
package caseview

import (
	"context"
	"sync"

	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
	"github.com/smallbiznis/chargedesk/internal/chargeback/present"
	"github.com/smallbiznis/chargedesk/internal/observability/logger"
	"go.uber.org/zap"
)

type State string

const (
	StateLoading   State = "loading"
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
	StateError     State = "error"
)

// Fetcher retrieves the ranked case list.
type Fetcher interface {
	FetchCases(ctx context.Context) ([]domain.Case, error)
}

// Snapshot is a consistent read of the view.
type Snapshot struct {
	State State
	Cards []present.Card
	Err   error
}

type View struct {
	fetcher   Fetcher
	presenter *present.Presenter
	log       *zap.Logger

	mu         sync.RWMutex
	generation uint64
	state      State
	cards      []present.Card
	err        error
}

func New(fetcher Fetcher, presenter *present.Presenter, log *zap.Logger) *View {
	if log == nil {
		log = zap.NewNop()
	}
	if presenter == nil {
		presenter = present.New(present.Params{Log: log})
	}
	return &View{
		fetcher:   fetcher,
		presenter: presenter,
		log:       log.Named("caseview"),
		state:     StateLoading,
	}
}

// Mount performs one retrieval and settles the view. When mounts overlap only
// the most recent one may settle; older responses are dropped.
func (v *View) Mount(ctx context.Context) State {
	v.mu.Lock()
	v.generation++
	generation := v.generation
	v.state = StateLoading
	v.mu.Unlock()

	cases, err := v.fetcher.FetchCases(ctx)

	var cards []present.Card
	if err == nil {
		cards = v.presenter.Cards(ctx, cases)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if generation != v.generation {
		v.log.Debug("discarding stale case list response",
			zap.Uint64("generation", generation),
			zap.Uint64("current", v.generation),
		)
		return v.state
	}

	switch {
	case err != nil:
		logger.WithContext(ctx, v.log).Error("case list retrieval failed", zap.Error(err))
		v.state, v.cards, v.err = StateError, nil, err
	case len(cards) == 0:
		v.state, v.cards, v.err = StateEmpty, nil, nil
	default:
		v.state, v.cards, v.err = StatePopulated, cards, nil
	}
	return v.state
}

func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

func (v *View) Cards() []present.Card {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]present.Card(nil), v.cards...)
}

func (v *View) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Snapshot{
		State: v.state,
		Cards: append([]present.Card(nil), v.cards...),
		Err:   v.err,
	}
}
