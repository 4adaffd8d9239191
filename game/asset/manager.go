// Package asset tracks image loads requested by event commands.
//
// Each image is probed on disk in the background. Its status is kept in a
// cache.Cache (in-process or redis) so the debug API and other processes
// can observe it, and every transition is published on the "asset" channel.
package asset

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kasuganosora/rmmvinterp/cache"
	"github.com/kasuganosora/rmmvinterp/game/interp"
	"go.uber.org/zap"
)

// Status of one image.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusMissing Status = "missing"
)

// Channel is the pub/sub channel asset transitions are published on.
const Channel = "asset"

const (
	keyPrefix         = "asset:"
	indexKey          = "asset:index"
	pendingKey        = "asset:pending"
	reservationPrefix = "asset:reservation:"
	lockPrefix        = "asset:lock:"
	lockTTL           = 30 * time.Second
)

// Entry is the stored state of one image.
type Entry struct {
	Key       string `json:"key"`
	Folder    string `json:"folder"`
	Name      string `json:"name"`
	Hue       int    `json:"hue"`
	Status    Status `json:"status"`
	UpdatedAt int64  `json:"updated_at"`
}

// Snapshot is the manager state reported by the debug API.
type Snapshot struct {
	Ready        bool                `json:"ready"`
	Pending      []string            `json:"pending"`
	Reservations map[string][]string `json:"reservations"`
	Entries      []Entry             `json:"entries"`
}

// Manager implements interp.Assets.
type Manager struct {
	imgPath string
	store   cache.Cache
	ps      cache.PubSub
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	reservations map[string]struct{}
}

var _ interp.Assets = (*Manager)(nil)

// NewManager creates a Manager that probes files under imgPath.
// ps may be nil, in which case transitions are not published.
func NewManager(imgPath string, store cache.Cache, ps cache.PubSub, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		imgPath:      imgPath,
		store:        store,
		ps:           ps,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		reservations: make(map[string]struct{}),
	}
}

func entryKey(kind interp.AssetKind, name string) string {
	return keyPrefix + string(kind) + "/" + name
}

// Request starts loading an image if it has not been requested before.
func (m *Manager) Request(kind interp.AssetKind, name string, hue int) {
	if name == "" {
		return
	}
	m.request(kind, name, hue)
}

func (m *Manager) request(kind interp.AssetKind, name string, hue int) Status {
	key := entryKey(kind, name)
	if st, err := m.store.HGet(m.ctx, key, "status"); err == nil && st != "" {
		return Status(st)
	}

	ok, err := m.store.SetNX(m.ctx, lockPrefix+key, "1", lockTTL)
	if err != nil {
		m.logger.Warn("asset lock failed", zap.String("key", key), zap.Error(err))
		return StatusLoading
	}
	if !ok {
		return StatusLoading
	}

	m.setStatus(key, kind, name, hue, StatusLoading)
	_ = m.store.SAdd(m.ctx, indexKey, key)
	_ = m.store.SAdd(m.ctx, pendingKey, key)

	m.wg.Add(1)
	go m.load(key, kind, name, hue)
	return StatusLoading
}

func (m *Manager) load(key string, kind interp.AssetKind, name string, hue int) {
	defer m.wg.Done()
	defer func() { _ = m.store.Del(m.ctx, lockPrefix+key) }()

	path := filepath.Join(m.imgPath, string(kind), name+".png")
	status := StatusReady
	if _, err := os.Stat(path); err != nil {
		status = StatusMissing
		if errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("image not found", zap.String("path", path))
		} else {
			m.logger.Error("image probe failed", zap.String("path", path), zap.Error(err))
		}
	}
	if m.ctx.Err() != nil {
		return
	}
	m.setStatus(key, kind, name, hue, status)
	_ = m.store.SRem(m.ctx, pendingKey, key)
}

func (m *Manager) setStatus(key string, kind interp.AssetKind, name string, hue int, status Status) {
	now := time.Now().UnixMilli()
	for field, value := range map[string]string{
		"folder":     string(kind),
		"name":       name,
		"hue":        strconv.Itoa(hue),
		"status":     string(status),
		"updated_at": strconv.FormatInt(now, 10),
	} {
		if err := m.store.HSet(m.ctx, key, field, value); err != nil {
			m.logger.Warn("asset status write failed", zap.String("key", key), zap.Error(err))
			return
		}
	}
	if m.ps == nil {
		return
	}
	payload, _ := json.Marshal(Entry{
		Key:       strings.TrimPrefix(key, keyPrefix),
		Folder:    string(kind),
		Name:      name,
		Hue:       hue,
		Status:    status,
		UpdatedAt: now,
	})
	if err := m.ps.Publish(m.ctx, Channel, string(payload)); err != nil {
		m.logger.Debug("asset publish failed", zap.Error(err))
	}
}

// Reserve requests an image and pins it under reservationID. It reports
// whether the load has settled; a missing file counts as settled.
func (m *Manager) Reserve(kind interp.AssetKind, name string, hue int, reservationID string) bool {
	if name == "" {
		return true
	}
	status := m.request(kind, name, hue)
	key := entryKey(kind, name)
	if reservationID != "" {
		_ = m.store.SAdd(m.ctx, reservationPrefix+reservationID, key)
		m.mu.Lock()
		m.reservations[reservationID] = struct{}{}
		m.mu.Unlock()
	}
	return status != StatusLoading
}

// ReleaseReservation drops the pins held under reservationID.
func (m *Manager) ReleaseReservation(reservationID string) {
	if reservationID == "" {
		return
	}
	_ = m.store.Del(m.ctx, reservationPrefix+reservationID)
	m.mu.Lock()
	delete(m.reservations, reservationID)
	m.mu.Unlock()
}

// IsReady reports whether no image load is in flight.
func (m *Manager) IsReady() bool {
	pending, err := m.store.SMembers(m.ctx, pendingKey)
	if err != nil {
		m.logger.Warn("asset pending read failed", zap.Error(err))
		return true
	}
	return len(pending) == 0
}

// Lookup returns the stored entry for an image.
func (m *Manager) Lookup(ctx context.Context, kind interp.AssetKind, name string) (Entry, bool) {
	return m.lookup(ctx, entryKey(kind, name))
}

func (m *Manager) lookup(ctx context.Context, key string) (Entry, bool) {
	fields, err := m.store.HGetAll(ctx, key)
	if err != nil || len(fields) == 0 {
		return Entry{}, false
	}
	hue, _ := strconv.Atoi(fields["hue"])
	updated, _ := strconv.ParseInt(fields["updated_at"], 10, 64)
	return Entry{
		Key:       strings.TrimPrefix(key, keyPrefix),
		Folder:    fields["folder"],
		Name:      fields["name"],
		Hue:       hue,
		Status:    Status(fields["status"]),
		UpdatedAt: updated,
	}, true
}

// Status returns a snapshot of every known image and reservation.
func (m *Manager) Status(ctx context.Context) (Snapshot, error) {
	keys, err := m.store.SMembers(ctx, indexKey)
	if err != nil {
		return Snapshot{}, err
	}
	sort.Strings(keys)
	snap := Snapshot{
		Pending:      []string{},
		Reservations: make(map[string][]string),
		Entries:      make([]Entry, 0, len(keys)),
	}
	for _, key := range keys {
		if e, ok := m.lookup(ctx, key); ok {
			snap.Entries = append(snap.Entries, e)
		}
	}
	pending, err := m.store.SMembers(ctx, pendingKey)
	if err != nil {
		return Snapshot{}, err
	}
	for _, key := range pending {
		snap.Pending = append(snap.Pending, strings.TrimPrefix(key, keyPrefix))
	}
	sort.Strings(snap.Pending)
	snap.Ready = len(snap.Pending) == 0

	m.mu.Lock()
	ids := make([]string, 0, len(m.reservations))
	for id := range m.reservations {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		members, err := m.store.SMembers(ctx, reservationPrefix+id)
		if err != nil {
			return Snapshot{}, err
		}
		for i := range members {
			members[i] = strings.TrimPrefix(members[i], keyPrefix)
		}
		sort.Strings(members)
		snap.Reservations[id] = members
	}
	return snap, nil
}

// Evict forgets missing images that are not reserved so a later request
// probes the disk again. It returns the number of entries removed.
func (m *Manager) Evict(ctx context.Context) (int, error) {
	keys, err := m.store.SMembers(ctx, indexKey)
	if err != nil {
		return 0, err
	}
	pinned := make(map[string]bool)
	m.mu.Lock()
	ids := make([]string, 0, len(m.reservations))
	for id := range m.reservations {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		members, err := m.store.SMembers(ctx, reservationPrefix+id)
		if err != nil {
			return 0, err
		}
		for _, k := range members {
			pinned[k] = true
		}
	}

	removed := 0
	for _, key := range keys {
		if pinned[key] {
			continue
		}
		st, err := m.store.HGet(ctx, key, "status")
		if err != nil || Status(st) != StatusMissing {
			continue
		}
		if err := m.store.Del(ctx, key); err != nil {
			return removed, err
		}
		_ = m.store.SRem(ctx, indexKey, key)
		removed++
	}
	return removed, nil
}

// Wait blocks until in-flight loads finish.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close stops accepting results from in-flight loads and waits for them.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}
