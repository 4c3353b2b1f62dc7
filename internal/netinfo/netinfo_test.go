package netinfo

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestDialProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	probe := &DialProbe{Addr: ln.Addr().String(), Timeout: time.Second, Kind: KindWifi}
	ctx := context.Background()

	if !probe.IsConnected(ctx) {
		t.Error("IsConnected = false with live listener")
	}
	if got := probe.ConnectionKind(ctx); got != KindWifi {
		t.Errorf("ConnectionKind = %q, want wifi", got)
	}
}

func TestDialProbeUnreachable(t *testing.T) {
	// A closed port on localhost refuses immediately.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	probe := &DialProbe{Addr: addr, Timeout: 500 * time.Millisecond}
	ctx := context.Background()

	if probe.IsConnected(ctx) {
		t.Error("IsConnected = true with no listener")
	}
	if got := probe.ConnectionKind(ctx); got != KindNone {
		t.Errorf("ConnectionKind = %q, want none", got)
	}
}

func TestDialProbeUnknownKind(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	probe := &DialProbe{Addr: ln.Addr().String(), Timeout: time.Second}
	if got := probe.ConnectionKind(context.Background()); got != KindUnknown {
		t.Errorf("ConnectionKind = %q, want unknown", got)
	}
}

func TestStaticProbe(t *testing.T) {
	ctx := context.Background()

	online := &StaticProbe{Connected: true, Link: KindCellular}
	if !online.IsConnected(ctx) || online.ConnectionKind(ctx) != KindCellular {
		t.Error("online static probe misreported")
	}

	offline := &StaticProbe{Connected: false, Link: KindWifi}
	if offline.IsConnected(ctx) || offline.ConnectionKind(ctx) != KindNone {
		t.Error("offline static probe misreported")
	}
}
