package models

import (
	"context"
	"sync"

	"github.com/allbin/go-slcan"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// MonitorModel holds the shared state behind the monitor TUI: the channel
// bound to the adapter, the endpoint frames are sent from, and the
// goroutine lifecycle for the read loop.
type MonitorModel struct {
	device string

	channel  *slcan.Channel
	endpoint *slcan.Endpoint

	connected bool
	err       error
	ready     bool
	inputMode InputMode

	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewMonitorModel(device string) *MonitorModel {
	ctx, cancel := context.WithCancel(context.Background())
	return &MonitorModel{
		device:    device,
		inputMode: InputModeNormal,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *MonitorModel) Device() string {
	return m.device
}

func (m *MonitorModel) SetChannel(ch *slcan.Channel, ep *slcan.Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channel = ch
	m.endpoint = ep
}

func (m *MonitorModel) Endpoint() *slcan.Endpoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.endpoint
}

func (m *MonitorModel) Stats() slcan.Stats {
	m.mu.RLock()
	ep := m.endpoint
	m.mu.RUnlock()
	if ep == nil {
		return slcan.Stats{}
	}
	return ep.Stats()
}

func (m *MonitorModel) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *MonitorModel) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}

func (m *MonitorModel) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MonitorModel) IsReady() bool {
	return m.ready
}

func (m *MonitorModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *MonitorModel) InputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *MonitorModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *MonitorModel) IsInInsertMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode == InputModeInsert
}

func (m *MonitorModel) Context() context.Context {
	return m.ctx
}

func (m *MonitorModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}
