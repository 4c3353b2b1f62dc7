// Package netinfo answers the two questions the sync policy gate asks:
// are we online, and what kind of link is it.
package netinfo

import (
	"context"
	"net"
	"time"
)

type Kind string

const (
	KindWifi     Kind = "wifi"
	KindCellular Kind = "cellular"
	KindNone     Kind = "none"
	KindUnknown  Kind = "unknown"
)

// Probe reports device connectivity.
type Probe interface {
	IsConnected(ctx context.Context) bool
	ConnectionKind(ctx context.Context) Kind
}

// DialProbe detects connectivity by dialing a well-known address. The link
// kind cannot be detected from inside a dial, so it is configured (and
// defaults to unknown when left empty).
type DialProbe struct {
	Addr    string
	Timeout time.Duration
	Kind    Kind
}

func (p *DialProbe) IsConnected(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: p.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (p *DialProbe) ConnectionKind(ctx context.Context) Kind {
	if !p.IsConnected(ctx) {
		return KindNone
	}
	if p.Kind == "" {
		return KindUnknown
	}
	return p.Kind
}

// StaticProbe returns fixed answers; used in tests and for forced-offline
// operation.
type StaticProbe struct {
	Connected bool
	Link      Kind
}

func (p *StaticProbe) IsConnected(ctx context.Context) bool {
	return p.Connected
}

func (p *StaticProbe) ConnectionKind(ctx context.Context) Kind {
	if !p.Connected {
		return KindNone
	}
	return p.Link
}
