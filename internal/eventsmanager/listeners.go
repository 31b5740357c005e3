package eventsmanager

import (
	"context"

	"github.com/rlubke/coherence-go-client/filters"
	"github.com/rlubke/coherence-go-client/internal/event"
	"github.com/rlubke/coherence-go-client/internal/listenergroup"
	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/serializer"
)

// RegisterKeyListener registers h on key, creating its KeyGroup on
// the first registration for that key fingerprint (spec §4.5
// registerKeyListener, §3 Events Manager lifecycle).
func (m *Manager) RegisterKeyListener(ctx context.Context, h *event.Listener, key []byte, lite bool) error {
	fp := serializer.FingerprintBytes(key)

	m.mu.Lock()
	g, ok := m.keyGroups[fp]
	if !ok {
		g = listenergroup.NewKeyGroup(m, m.cacheName, fp, key, func() {
			m.mu.Lock()
			delete(m.keyGroups, fp)
			m.mu.Unlock()
		})
		m.keyGroups[fp] = g
	}
	m.mu.Unlock()

	if err := g.AddListener(ctx, h, lite); err != nil {
		return err
	}
	return nil
}

// RemoveKeyListener removes h from key's group, destroying the group
// once its last record is removed.
func (m *Manager) RemoveKeyListener(ctx context.Context, h *event.Listener, key []byte) error {
	fp := serializer.FingerprintBytes(key)
	m.mu.Lock()
	g, ok := m.keyGroups[fp]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return g.RemoveListener(ctx, h)
}

// RegisterFilterListener registers h on filter, normalizing a nil
// filter to the canonical Always() singleton (spec §4.5).
func (m *Manager) RegisterFilterListener(ctx context.Context, h *event.Listener, filter filters.Filter, lite bool) error {
	if filter == nil {
		filter = filters.Always()
	}
	identity := filter.Identity()
	encoded, err := filter.Encode()
	if err != nil {
		return wire.Newf(wire.KindProtocol, "eventsmanager.RegisterFilterListener", err)
	}

	m.mu.Lock()
	g, ok := m.filterGroups[identity]
	if !ok {
		id := m.nextFilterIDValue()
		g = listenergroup.NewFilterGroup(m, m.cacheName, identity, encoded, id,
			func(fid wire.FilterID) {
				m.mu.Lock()
				m.filterIDIdx[fid] = g
				m.mu.Unlock()
			},
			func(fid wire.FilterID) {
				m.mu.Lock()
				delete(m.filterIDIdx, fid)
				delete(m.filterGroups, identity)
				m.mu.Unlock()
			},
		)
		m.filterGroups[identity] = g
	}
	m.mu.Unlock()

	return g.AddListener(ctx, h, lite)
}

// RemoveFilterListener removes h from filter's group, normalizing nil
// the same way RegisterFilterListener does.
func (m *Manager) RemoveFilterListener(ctx context.Context, h *event.Listener, filter filters.Filter) error {
	if filter == nil {
		filter = filters.Always()
	}
	identity := filter.Identity()
	m.mu.Lock()
	g, ok := m.filterGroups[identity]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return g.RemoveListener(ctx, h)
}
