package audit

import (
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/hoju/extract"
	"github.com/domino14/hoju/feature"
)

// DefaultSubject is the subject decisions are published on.
const DefaultSubject = "hoju.decisions"

// Publisher is the part of a NATS connection the publisher needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes every decision as a JSON Message.
type NATSPublisher struct {
	pub     Publisher
	nc      *nats.Conn
	subject string
	catalog *feature.Catalog
}

// DialNATS connects to url and publishes to subject.
func DialNATS(url, subject string, c *feature.Catalog) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	log.Info().Str("url", url).Str("subject", subject).Msg("audit-nats-connected")
	p := NewNATSPublisher(nc, subject, c)
	p.nc = nc
	return p, nil
}

// NewNATSPublisher publishes through pub. An empty subject selects
// DefaultSubject.
func NewNATSPublisher(pub Publisher, subject string, c *feature.Catalog) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{pub: pub, subject: subject, catalog: c}
}

func (p *NATSPublisher) OnDecision(ev *extract.DecisionEvent) error {
	data, err := json.Marshal(NewMessage(ev, p.catalog))
	if err != nil {
		return err
	}
	return p.pub.Publish(p.subject, data)
}

// Close flushes pending messages and closes a connection opened by
// DialNATS.
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
