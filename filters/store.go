package filters

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/signals-client/internal/dates"
	"github.com/jrsteele09/signals-client/internal/utils"
	"github.com/jrsteele09/signals-client/kvstore"
)

// StorageKey is the durable key of the persisted subset.
const StorageKey = "filter-storage"

const persistVersion = 0

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type persistedState struct {
	Query        *string     `json:"q"`
	Models       []string    `json:"models"`
	Conditions   []Condition `json:"conditions"`
	StrategyType *string     `json:"strategy_type"`
	PageSize     int         `json:"pageSize"`
}

type persistedEnvelope struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

// Store is the observable filter state. Every mutation is persisted; date and page are not.
type Store struct {
	kv             kvstore.Store
	logger         zerolog.Logger
	persistTimeout time.Duration

	mu        sync.RWMutex
	state     State
	listeners map[uuid.UUID]func(State)

	persistMu sync.Mutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithPersistTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.persistTimeout = d
	}
}

// InitialState is the state of a fresh install: today's KST date, page 1, no filters.
func InitialState() State {
	return State{
		Date:       dates.TodayKST(NowTimeFunc()),
		Models:     []string{},
		Conditions: []Condition{},
		Page:       1,
		PageSize:   DefaultPageSize,
	}
}

// NewStore builds the store and hydrates the persisted subset from kv. Unreadable
// persisted data is logged and ignored.
func NewStore(ctx context.Context, kv kvstore.Store, options ...StoreOption) (*Store, error) {
	if kv == nil {
		return nil, errors.New("[NewStore] kv store is required")
	}

	s := &Store{
		kv:             kv,
		logger:         log.Logger,
		persistTimeout: 5 * time.Second,
		state:          InitialState(),
		listeners:      make(map[uuid.UUID]func(State)),
	}
	for _, opt := range options {
		opt(s)
	}

	s.hydrate(ctx)
	return s, nil
}

func (s *Store) hydrate(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Err(err).Msg("Reading persisted filters failed")
		return
	}
	if !ok {
		return
	}

	var env persistedEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		s.logger.Warn().Err(err).Msg("Ignoring unreadable persisted filters")
		return
	}

	p := env.State
	s.state.Query = p.Query
	s.state.StrategyType = p.StrategyType
	if p.Models != nil {
		s.state.Models = p.Models
	}
	if p.PageSize > 0 {
		s.state.PageSize = p.PageSize
	}
	s.state.Conditions = fitConditions(p.Conditions, len(s.state.Models))
}

// State returns a snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every mutation.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	id := uuid.New()
	s.mu.Lock()
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) SetDate(date string) {
	s.mutate(func(st *State) {
		st.Date = date
		st.Page = 1
	})
}

func (s *Store) SetQuery(q *string) {
	s.mutate(func(st *State) {
		st.Query = copyPtr(q)
		st.Page = 1
	})
}

// SetModels replaces the models and resizes the conditions to match.
func (s *Store) SetModels(models []string) {
	s.mutate(func(st *State) {
		st.Models = append([]string{}, models...)
		st.Conditions = fitConditions(st.Conditions, len(models))
		st.Page = 1
	})
}

// SetConditions replaces the conditions, resized to the current models. Page is kept.
func (s *Store) SetConditions(conditions []Condition) {
	s.mutate(func(st *State) {
		st.Conditions = fitConditions(conditions, len(st.Models))
	})
}

func (s *Store) SetStrategyType(strategyType *string) {
	s.mutate(func(st *State) {
		st.StrategyType = copyPtr(strategyType)
		st.Page = 1
	})
}

func (s *Store) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.mutate(func(st *State) {
		st.Page = page
	})
}

func (s *Store) SetPageSize(pageSize int) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	s.mutate(func(st *State) {
		st.PageSize = pageSize
		st.Page = 1
	})
}

// SetFilters applies a batch patch. Unlike the individual setters it does not reset the page.
func (s *Store) SetFilters(p Patch) {
	s.mutate(func(st *State) {
		if p.Date != nil {
			st.Date = *p.Date
		}
		if p.Query != nil {
			st.Query = utils.Ptr(*p.Query)
		}
		if p.Models != nil {
			st.Models = append([]string{}, p.Models...)
		}
		if p.Conditions != nil {
			st.Conditions = p.Conditions
		}
		if p.StrategyType != nil {
			st.StrategyType = utils.Ptr(*p.StrategyType)
		}
		if p.Page != nil && *p.Page >= 1 {
			st.Page = *p.Page
		}
		if p.PageSize != nil && *p.PageSize >= 1 {
			st.PageSize = *p.PageSize
		}
		st.Conditions = fitConditions(st.Conditions, len(st.Models))
	})
}

// ResetFilters returns to the initial state with today's date.
func (s *Store) ResetFilters() {
	s.mutate(func(st *State) {
		*st = InitialState()
	})
}

func (s *Store) ResetPagination() {
	s.mutate(func(st *State) {
		st.Page = 1
	})
}

func (s *Store) mutate(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.persist()
	for _, l := range listeners {
		l(snapshot)
	}
}

// persist writes the latest state. Writes are serialized so the last one always reflects
// the newest mutation.
func (s *Store) persist() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	current := s.State()
	data, err := json.Marshal(persistedEnvelope{
		State: persistedState{
			Query:        current.Query,
			Models:       current.Models,
			Conditions:   current.Conditions,
			StrategyType: current.StrategyType,
			PageSize:     current.PageSize,
		},
		Version: persistVersion,
	})
	if err != nil {
		s.logger.Err(err).Msg("Encoding filters failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		s.logger.Err(err).Msg("Persisting filters failed")
	}
}
