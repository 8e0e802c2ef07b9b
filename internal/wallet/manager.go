package wallet

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
)

// Wallet holds metadata for a single signing account. The private key lives
// in the KeyStore under KeyRef.
type Wallet struct {
	Name      string         `json:"name"`
	Address   common.Address `json:"address"`
	KeyRef    string         `json:"key_ref"`
	IsDefault bool           `json:"is_default,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// Store is an interface for persisting wallets.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Manager handles wallet CRUD.
type Manager struct {
	mu      sync.Mutex
	store   Store
	keys    KeyStore
	wallets map[string]*Wallet
	loaded  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore uses an in-memory store (useful for tests).
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithKeyStore sets where private keys are kept.
func WithKeyStore(ks KeyStore) Option {
	return func(m *Manager) {
		m.keys = ks
	}
}

// NewManager creates a new wallet manager. Without options wallets and keys
// live in memory only.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		wallets: make(map[string]*Wallet),
		store:   &memStore{},
		keys:    NewInMemoryKeystore(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Import derives the address of a hex private key and stores the wallet.
// The first wallet imported becomes the default.
func (m *Manager) Import(name, hexKey string) (*Wallet, error) {
	if name == "" {
		return nil, errors.New("wallet name is required")
	}
	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	var w *Wallet
	err = m.update(func() error {
		if _, exists := m.wallets[name]; exists {
			return ErrWalletExists
		}
		ref, err := m.keys.Store(name, hexKey)
		if err != nil {
			return fmt.Errorf("storing key: %w", err)
		}
		w = &Wallet{
			Name:      name,
			Address:   crypto.PubkeyToAddress(privKey.PublicKey),
			KeyRef:    ref,
			IsDefault: len(m.wallets) == 0,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		m.wallets[name] = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Get returns a wallet by name.
func (m *Manager) Get(name string) (*Wallet, error) {
	var w *Wallet
	err := m.read(func() error {
		var err error
		w, err = m.lookup(name)
		return err
	})
	return w, err
}

// Key returns the stored private key of a wallet. It forces the keychain to
// unlock, so callers can trigger any password prompt up front.
func (m *Manager) Key(name string) (string, error) {
	w, err := m.Get(name)
	if err != nil {
		return "", err
	}
	return m.keys.Retrieve(w.KeyRef)
}

// Remove deletes a wallet and its stored key. Removing the default promotes
// the first remaining wallet by name.
func (m *Manager) Remove(name string) error {
	return m.update(func() error {
		w, err := m.lookup(name)
		if err != nil {
			return err
		}
		if err := m.keys.Delete(w.KeyRef); err != nil {
			return err
		}
		delete(m.wallets, name)
		if rest := m.sorted(); w.IsDefault && len(rest) > 0 {
			rest[0].IsDefault = true
		}
		return nil
	})
}

// List returns all wallets sorted by name.
func (m *Manager) List() ([]*Wallet, error) {
	var out []*Wallet
	err := m.read(func() error {
		out = m.sorted()
		return nil
	})
	return out, err
}

// SetDefault marks a wallet as the default.
func (m *Manager) SetDefault(name string) error {
	return m.update(func() error {
		if _, err := m.lookup(name); err != nil {
			return err
		}
		for _, w := range m.wallets {
			w.IsDefault = w.Name == name
		}
		return nil
	})
}

// Default returns the default wallet, or nil if none.
func (m *Manager) Default() *Wallet {
	var def *Wallet
	m.read(func() error { //nolint:errcheck
		for _, w := range m.sorted() {
			if w.IsDefault {
				def = w
				return nil
			}
		}
		// A lone wallet is the default even if never marked.
		if len(m.wallets) == 1 {
			def = m.sorted()[0]
		}
		return nil
	})
	return def
}

func (m *Manager) keyStore() KeyStore { return m.keys }

// --- internal ---

// read runs fn with the wallet set loaded and the lock held.
func (m *Manager) read(fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return err
	}
	return fn()
}

// update is read followed by a save when fn succeeds.
func (m *Manager) update(fn func() error) error {
	return m.read(func() error {
		if err := fn(); err != nil {
			return err
		}
		return m.store.Save(m.sorted())
	})
}

func (m *Manager) lookup(name string) (*Wallet, error) {
	w, ok := m.wallets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	return w, nil
}

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) sorted() []*Wallet {
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// --- in-memory store ---

type memStore struct {
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) {
	return s.wallets, nil
}

func (s *memStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}
