package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sifan077/CharacterVault/internal/app/model"
	"github.com/sifan077/CharacterVault/internal/client/api"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrSourceNotConfigured = errors.New("data source not configured")

// ExternalSource is the paginated public character API.
type ExternalSource interface {
	GetCharacters(ctx context.Context, page int) api.Response[model.ExternalPage]
}

// LocalSource is the collection service.
type LocalSource interface {
	ListAll(ctx context.Context) ([]model.Character, error)
	Create(ctx context.Context, req *model.CreateCharacterRequest) api.Response[model.Character]
}

// AlternateSource is the alternate backend.
type AlternateSource interface {
	List(ctx context.Context) api.Response[[]model.Character]
}

type Sources struct {
	External  ExternalSource
	Local     LocalSource
	Alternate AlternateSource
}

type Options struct {
	Logger *zap.Logger
}

// Store serializes every transition through Reduce and fans snapshots out to
// subscribers.
type Store struct {
	sources Sources
	logger  *zap.Logger

	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int
}

func New(sources Sources, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sources: sources,
		logger:  logger,
		state:   Initial(),
		subs:    make(map[int]func(State)),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Displayed returns the records visible in the current mode.
func (s *Store) Displayed() []model.Character {
	return s.Snapshot().Displayed()
}

// Subscribe registers fn for every state change and returns its cancel func.
// fn runs on the dispatching goroutine, after the lock is released.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Dispatch applies a and returns the resulting state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

func (s *Store) Select(c *model.Character) {
	s.Dispatch(CharacterSelected{Character: c})
}

func (s *Store) ClearError() {
	s.Dispatch(ErrorCleared{})
}

// LoadExternal fetches one page of the public API.
func (s *Store) LoadExternal(ctx context.Context, page int) error {
	s.Dispatch(LoadingSet{Loading: true})
	s.Dispatch(PageSet{Page: page})

	if s.sources.External == nil {
		return s.fail("external", ErrSourceNotConfigured, "Failed to load characters")
	}
	data, err := s.sources.External.GetCharacters(ctx, page).Unwrap()
	if err != nil {
		return s.fail("external", err, "Failed to load characters")
	}
	s.Dispatch(ExternalLoaded{Characters: data.Results, TotalPages: data.Info.Pages})
	return nil
}

// LoadLocal fetches every record in the collection.
func (s *Store) LoadLocal(ctx context.Context) error {
	s.Dispatch(LoadingSet{Loading: true})

	if s.sources.Local == nil {
		return s.fail("local", ErrSourceNotConfigured, "Failed to load local characters")
	}
	characters, err := s.sources.Local.ListAll(ctx)
	if err != nil {
		return s.fail("local", err, "Failed to load local characters")
	}
	s.Dispatch(LocalLoaded{Characters: characters})
	return nil
}

// LoadAlternate fetches every record from the alternate backend.
func (s *Store) LoadAlternate(ctx context.Context) error {
	s.Dispatch(LoadingSet{Loading: true})

	if s.sources.Alternate == nil {
		return s.fail("alternate", ErrSourceNotConfigured, "Failed to load alternate characters")
	}
	characters, err := s.sources.Alternate.List(ctx).Unwrap()
	if err != nil {
		return s.fail("alternate", err, "Failed to load alternate characters")
	}
	s.Dispatch(AlternateLoaded{Characters: characters})
	return nil
}

// CreateLocal stores a new record and appends it to the local set.
func (s *Store) CreateLocal(ctx context.Context, req *model.CreateCharacterRequest) (*model.Character, error) {
	s.Dispatch(LoadingSet{Loading: true})

	if s.sources.Local == nil {
		return nil, s.fail("create", ErrSourceNotConfigured, "Failed to create character")
	}
	created, err := s.sources.Local.Create(ctx, req).Unwrap()
	if err != nil {
		return nil, s.fail("create", err, "Failed to create character")
	}
	s.Dispatch(LocalAdded{Character: created})
	return &created, nil
}

// SetDataSource switches mode, drops the record sets the mode does not show
// and reloads the ones it does. Loads run concurrently; the first error is
// returned after all of them finish.
func (s *Store) SetDataSource(ctx context.Context, mode DataSource) error {
	if !mode.Valid() {
		return fmt.Errorf("set data source: unknown mode %q", mode)
	}
	page := s.Dispatch(DataSourceSet{Source: mode}).CurrentPage

	plan := PlanFor(mode)
	if plan.ClearExternal {
		s.Dispatch(ExternalLoaded{Characters: []model.Character{}, TotalPages: 1})
	}
	if plan.ClearLocal {
		s.Dispatch(LocalLoaded{Characters: []model.Character{}})
	}
	if plan.ClearAlternate {
		s.Dispatch(AlternateLoaded{Characters: []model.Character{}})
	}

	var g errgroup.Group
	if plan.LoadExternal {
		g.Go(func() error { return s.LoadExternal(ctx, page) })
	}
	if plan.LoadLocal {
		g.Go(func() error { return s.LoadLocal(ctx) })
	}
	if plan.LoadAlternate {
		g.Go(func() error { return s.LoadAlternate(ctx) })
	}
	return g.Wait()
}

// NextPage loads the following external page. Ignored at the last page or
// when the mode has no external source.
func (s *Store) NextPage(ctx context.Context) error {
	st := s.Snapshot()
	if !PlanFor(st.DataSource).LoadExternal || st.CurrentPage >= st.TotalPages {
		return nil
	}
	return s.LoadExternal(ctx, st.CurrentPage+1)
}

// PreviousPage loads the preceding external page. Ignored at page 1.
func (s *Store) PreviousPage(ctx context.Context) error {
	st := s.Snapshot()
	if !PlanFor(st.DataSource).LoadExternal || st.CurrentPage <= 1 {
		return nil
	}
	return s.LoadExternal(ctx, st.CurrentPage-1)
}

// GoToPage loads page n when it lies in [1, TotalPages].
func (s *Store) GoToPage(ctx context.Context, n int) error {
	st := s.Snapshot()
	if !PlanFor(st.DataSource).LoadExternal || n < 1 || n > st.TotalPages {
		return nil
	}
	return s.LoadExternal(ctx, n)
}

// fail records the failure in state and returns it wrapped. The client's own
// message is preferred over the generic fallback.
func (s *Store) fail(op string, err error, fallback string) error {
	msg := fallback
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	s.logger.Warn("character load failed", zap.String("source", op), zap.Error(err))
	s.Dispatch(Failed{Message: msg})
	return fmt.Errorf("%s: %w", op, err)
}
