package snapshot

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tranvictor/vaultctl/gateway"
	"github.com/tranvictor/vaultctl/logger"
	"github.com/tranvictor/vaultctl/metrics"
	"github.com/tranvictor/vaultctl/vault"
)

// DefaultConcurrency bounds how many reads one Refresh runs at once.
const DefaultConcurrency = 8

type SessionSource interface {
	Session() gateway.Session
}

type entry struct {
	field Field
	// gen changes every time the field is invalidated, so a read started
	// before an invalidation can't land after it.
	gen uint64
}

type Cache struct {
	mu         sync.RWMutex
	fields     map[FieldKey]entry
	account    common.Address
	connected  bool
	gen        uint64
	facade     *vault.Facade
	session    SessionSource
	indicators metrics.Indicators
	limit      int
	now        func() time.Time
	log        zerolog.Logger
}

func NewCache(facade *vault.Facade, session SessionSource, indicators metrics.Indicators) *Cache {
	if indicators == nil {
		indicators = metrics.NoopIndicators{}
	}
	s := session.Session()
	return &Cache{
		fields:     map[FieldKey]entry{},
		account:    s.Account,
		connected:  s.Connected,
		facade:     facade,
		session:    session,
		indicators: indicators,
		limit:      DefaultConcurrency,
		now:        time.Now,
		log:        logger.GetForComponent("snapshot"),
	}
}

// WithConcurrency changes how many reads run in parallel. n <= 0 is
// ignored.
func (c *Cache) WithConcurrency(n int) *Cache {
	if n > 0 {
		c.limit = n
	}
	return c
}

func (c *Cache) Get(key FieldKey) Field {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fields[key].field
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := make(Snapshot, len(c.fields))
	for k, e := range c.fields {
		s[k] = e.field
	}
	return s
}

// Invalidate puts keys back to Loading until they are read again.
func (c *Cache) Invalidate(keys ...FieldKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidate(keys)
}

func (c *Cache) invalidate(keys []FieldKey) map[FieldKey]uint64 {
	gens := make(map[FieldKey]uint64, len(keys))
	for _, k := range keys {
		c.gen++
		c.fields[k] = entry{field: Field{State: Loading}, gen: c.gen}
		gens[k] = c.gen
	}
	return gens
}

// SyncAccount drops every per-account field when the session account
// differs from the one the cache was filled for. It reports whether
// anything was dropped.
func (c *Cache) SyncAccount() bool {
	s := c.session.Session()
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.Connected == c.connected && s.Account == c.account {
		return false
	}
	for k := range c.fields {
		if k.Name.PerAccount() {
			delete(c.fields, k)
		}
	}
	c.account = s.Account
	c.connected = s.Connected
	c.log.Debug().Str("account", s.Account.Hex()).Bool("connected", s.Connected).Msg("account changed, dropped account fields")
	return true
}

// RefreshAll reads every field available to the current session.
func (c *Cache) RefreshAll(ctx context.Context) error {
	c.SyncAccount()
	return c.Refresh(ctx, AllKeys(c.session.Session().Connected)...)
}

// Refresh marks keys Loading and reads them concurrently. Each read is
// applied as soon as it completes. The returned error joins the ReadError
// of every failed field.
func (c *Cache) Refresh(ctx context.Context, keys ...FieldKey) error {
	c.SyncAccount()
	s := c.session.Session()

	c.mu.Lock()
	gens := c.invalidate(keys)
	c.mu.Unlock()

	var (
		errMu sync.Mutex
		errs  []error
	)
	g := errgroup.Group{}
	g.SetLimit(c.limit)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			f := c.read(ctx, key, s)
			if f.State == Errored {
				errMu.Lock()
				errs = append(errs, f.Err)
				errMu.Unlock()
			}
			c.apply(key, gens[key], s.Account, f)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (c *Cache) apply(key FieldKey, gen uint64, account common.Address, f Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fields[key].gen != gen {
		return
	}
	if key.Name.PerAccount() && account != c.account {
		return
	}
	c.fields[key] = entry{field: f, gen: gen}
}

func (c *Cache) read(ctx context.Context, key FieldKey, s gateway.Session) Field {
	value, addr, err := c.fetch(ctx, key, s)
	if err != nil {
		c.indicators.IncrementReadErrors(string(key.Name))
		c.log.Warn().Str("field", key.String()).Err(err).Msg("read failed")
		return Field{State: Errored, Err: &ReadError{Field: key, Err: err}, UpdatedAt: c.now()}
	}
	return Field{State: Ready, Value: value, Address: addr, UpdatedAt: c.now()}
}

// Uint returns the value of a ready uint256 field.
func (s Snapshot) Uint(key FieldKey) (*big.Int, bool) {
	f := s.Get(key)
	if !f.Ready() || f.Value == nil {
		return nil, false
	}
	return f.Value, true
}
