// Package bus connects a session to the MQTT message bus.
//
// Publisher forwards session events to earpanel/event/{type} and keeps the
// retained earpanel/state/active topic current. Commands turns messages on
// earpanel/command/{action} into controller calls.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/nerrad567/earpanel-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/earpanel-core/internal/session"
	"github.com/nerrad567/earpanel-core/internal/status"
)

const defaultBufferSize = 256

// Transport is the subset of *mqtt.Client the bus uses.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// StatusSource provides the session read-out for the retained state topic.
type StatusSource interface {
	Status() session.Status
}

// Logger defines the logging interface used by the bus.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// activeState is the retained payload on earpanel/state/active.
type activeState struct {
	Active   *status.Summary `json:"active"`
	Scanning bool            `json:"scanning"`
	Updating []string        `json:"updating"`
}

// Publisher is a session.EventSink that publishes from its own goroutine.
type Publisher struct {
	transport Transport
	source    StatusSource
	qos       byte
	events    chan session.Event
	logger    Logger
	dropped   atomic.Uint64
}

var _ session.EventSink = (*Publisher)(nil)

// NewPublisher creates a publisher. source may be nil, in which case the
// retained state topic is not maintained.
func NewPublisher(transport Transport, source StatusSource, qos byte, logger Logger) *Publisher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Publisher{
		transport: transport,
		source:    source,
		qos:       qos,
		events:    make(chan session.Event, defaultBufferSize),
		logger:    logger,
	}
}

// HandleEvent queues e. Events arriving while the buffer is full are dropped.
func (p *Publisher) HandleEvent(e session.Event) {
	select {
	case p.events <- e:
	default:
		n := p.dropped.Add(1)
		p.logger.Warn("mqtt publish buffer full, dropping event", "type", e.Type, "dropped", n)
	}
}

// Dropped returns how many events were discarded.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Run publishes queued events until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	p.publishState()
	for {
		select {
		case e := <-p.events:
			p.publish(e)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Publisher) publish(e session.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		p.logger.Warn("encoding event", "type", e.Type, "error", err)
		return
	}
	topic := mqtt.Topics{}.Event(string(e.Type))
	if err := p.transport.Publish(topic, payload, p.qos, false); err != nil {
		p.logger.Warn("publishing event", "topic", topic, "error", err)
		return
	}
	p.logger.Debug("event published", "topic", topic)

	if changesState(e.Type) {
		p.publishState()
	}
}

func (p *Publisher) publishState() {
	if p.source == nil {
		return
	}
	st := p.source.Status()
	payload, err := json.Marshal(activeState{
		Active:   st.Active,
		Scanning: st.Scanning,
		Updating: st.Updating,
	})
	if err != nil {
		p.logger.Warn("encoding state", "error", err)
		return
	}
	if err := p.transport.Publish(mqtt.Topics{}.ActiveState(), payload, p.qos, true); err != nil {
		p.logger.Warn("publishing state", "error", fmt.Errorf("retained state: %w", err))
	}
}

func changesState(t session.EventType) bool {
	switch t {
	case session.EventDeviceConnected,
		session.EventDeviceDisconnected,
		session.EventScanStarted,
		session.EventScanCompleted,
		session.EventFirmwareUpdateStarted,
		session.EventFirmwareUpdateCompleted:
		return true
	default:
		return false
	}
}
