// Package netstat tracks whether the gateway is reachable and whether the
// host is on a Wi-Fi link.
package netstat

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/drivesync/internal/logging"
	"github.com/dmitrijs2005/drivesync/internal/netx"
)

// Status is what the transfer engine asks before starting a download.
type Status interface {
	Online() bool
	OnWiFi() bool
}

// Monitor probes the gateway periodically and caches the result.
type Monitor struct {
	url     string
	client  *http.Client
	timeout time.Duration
	log     logging.Logger

	online atomic.Bool

	// interfaces is a seam for tests.
	interfaces func() ([]net.Interface, error)
}

// NewMonitor returns a Monitor that starts out online; the first probe
// corrects it.
func NewMonitor(url string, client *http.Client, log logging.Logger) *Monitor {
	if log == nil {
		log = logging.Nop()
	}
	m := &Monitor{
		url:        url,
		client:     client,
		timeout:    3 * time.Second,
		log:        log,
		interfaces: net.Interfaces,
	}
	m.online.Store(true)
	return m
}

func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Probe pings the gateway once and updates the cached state.
func (m *Monitor) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := netx.Ping(ctx, m.client, m.url)
	now := err == nil

	if prev := m.online.Swap(now); prev != now {
		if now {
			m.log.Info(ctx, "gateway reachable", "url", m.url)
		} else {
			m.log.Warn(ctx, "gateway unreachable", "url", m.url, "err", err)
		}
	}
	return now
}

// DefaultInterval is used by Watch when given a non-positive interval.
const DefaultInterval = 3 * time.Second

// Watch probes every interval until ctx is done.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	m.Probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

var wifiPrefixes = []string{"wl", "wifi", "wi-fi", "airport", "ath"}

// OnWiFi reports whether an up, non-loopback wireless interface exists.
// Interfaces are recognized by name.
func (m *Monitor) OnWiFi() bool {
	ifaces, err := m.interfaces()
	if err != nil {
		return false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		name := strings.ToLower(iface.Name)
		for _, p := range wifiPrefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
	}
	return false
}

// Static is a fixed Status.
type Static struct {
	IsOnline bool
	IsWiFi   bool
}

func (s Static) Online() bool { return s.IsOnline }
func (s Static) OnWiFi() bool { return s.IsWiFi }
