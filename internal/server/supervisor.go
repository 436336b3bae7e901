// SPDX-License-Identifier: AGPL-3.0-or-later
// QuoteHub - A pub/sub stock quote streaming server
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/USA-RedDragon/QuoteHub>

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/USA-RedDragon/QuoteHub/internal/metrics"
	"github.com/USA-RedDragon/QuoteHub/internal/quotes"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

var supervisorTracer = otel.Tracer("github.com/USA-RedDragon/QuoteHub/internal/server")

// reapInterval is how often the Supervisor checks for finished client
// workers and, absent new handles, sleeps.
const reapInterval = 100 * time.Millisecond

// Config configures a Supervisor.
type Config struct {
	ListenAddress    string
	Port             int
	Tickers          []string
	QuoteInterval    time.Duration
	LivenessTimeout  time.Duration
}

// Supervisor owns the three always-on service workers (quote
// generator, keep-alive listener, TCP accept loop) and the dynamic
// population of PerClientStreamer workers they spawn. It reaps
// finished client workers, evicting their routes, and drives
// cooperative shutdown via a CancellationFlag.
type Supervisor struct {
	cfg     Config
	tickers *quotes.TickersRouter
	monitor *quotes.MonitoringRouter
	flag    *quotes.CancellationFlag
	metrics *metrics.Metrics

	udpConn     *net.UDPConn
	tcpListener *net.TCPListener

	handles chan ClientHandle

	// inFlight tracks client workers reapLoop has accepted from handles
	// but not yet reaped. joinClientWorkers takes over waiting on these
	// once reapLoop stops, so a worker still running at shutdown is
	// never dropped unjoined.
	inFlight []<-chan StreamResult
}

// NewSupervisor builds a Supervisor from cfg. It does not bind any
// sockets until Run is called.
func NewSupervisor(cfg Config, m *metrics.Metrics) *Supervisor {
	return &Supervisor{
		cfg:     cfg,
		tickers: quotes.NewTickersRouter(),
		monitor: quotes.NewMonitoringRouter(),
		flag:    quotes.NewCancellationFlag(),
		metrics: m,
		handles: make(chan ClientHandle, 64),
	}
}

// Flag returns the Supervisor's CancellationFlag, so callers (e.g. a
// signal handler) can request shutdown.
func (s *Supervisor) Flag() *quotes.CancellationFlag {
	return s.flag
}

// Run binds the TCP and UDP sockets, starts the three service
// workers, and blocks reaping finished client workers until ctx is
// cancelled or the CancellationFlag is set, then drains every running
// worker before returning.
func (s *Supervisor) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.ListenAddress, s.cfg.Port)

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("resolve udp address: %w", err)
	}
	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("bind udp listener: %w", err)
	}
	s.udpConn = udpConn
	defer udpConn.Close()

	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return fmt.Errorf("resolve tcp address: %w", err)
	}
	tcpListener, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return fmt.Errorf("bind tcp listener: %w", err)
	}
	s.tcpListener = tcpListener
	defer tcpListener.Close()

	slog.Info("quote server listening", "address", addr)

	var quoteRecorder quotes.QuoteRecorder
	var pingRecorder PingRecorder
	if s.metrics != nil {
		quoteRecorder = s.metrics
		pingRecorder = s.metrics
	}

	generator := quotes.NewQuoteGenerator(quotes.GeneratorConfig{
		Tickers:  s.cfg.Tickers,
		Interval: s.cfg.QuoteInterval,
	}, s.tickers, s.flag, quoteRecorder)
	keepAlive := NewKeepAliveListener(udpConn, s.monitor, s.flag, pingRecorder)
	acceptor := NewConnectionAcceptor(udpConn, s.tickers, s.monitor, s.flag, s.handles)
	if s.cfg.LivenessTimeout > 0 {
		acceptor.timeout = s.cfg.LivenessTimeout
	}
	acceptLoop := NewTcpAcceptLoop(tcpListener, acceptor, s.flag)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := generator.Run(gctx)
		if err != nil && gctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		keepAlive.Run()
		return nil
	})
	g.Go(func() error {
		acceptLoop.Run()
		return nil
	})

	s.reapLoop(gctx)

	s.flag.Cancel()
	_ = udpConn.Close()
	_ = tcpListener.Close()

	s.joinClientWorkers()

	if err := g.Wait(); err != nil {
		slog.Error("service worker exited with error", "error", err)
	}

	return nil
}

// reapLoop collects new client handles and, once a streamer returns,
// evicts it from both routers. It returns once ctx is done or the
// CancellationFlag is set, leaving any still-running workers recorded
// in s.inFlight for joinClientWorkers to wait on.
func (s *Supervisor) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case h, ok := <-s.handles:
			if !ok {
				s.flag.Cancel()
				return
			}
			s.inFlight = append(s.inFlight, h.Done)
			if s.metrics != nil {
				s.metrics.IncrementActiveClients()
			}
			continue
		case <-ticker.C:
		}

		if s.flag.IsCancelled() {
			return
		}

		s.inFlight = s.reapFinished(ctx, s.inFlight)
	}
}

func (s *Supervisor) reapFinished(ctx context.Context, clients []<-chan StreamResult) []<-chan StreamResult {
	remaining := clients[:0]
	for _, done := range clients {
		select {
		case result := <-done:
			s.evict(ctx, result)
		default:
			remaining = append(remaining, done)
		}
	}
	return remaining
}

func (s *Supervisor) evict(ctx context.Context, result StreamResult) {
	_, span := supervisorTracer.Start(ctx, "Supervisor.evict")
	defer span.End()

	s.monitor.Delete(result.Client)
	s.tickers.DeleteClients([]quotes.ClientAddress{result.Client})
	if s.metrics != nil {
		s.metrics.DecrementActiveClients()
		if result.TimedOut {
			s.metrics.RecordClientTimeout()
		}
	}
	slog.Info("client evicted", "client", result.Client, "timed_out", result.TimedOut)
}

// joinClientWorkers waits, with a bounded timeout, for any client
// workers still in flight when shutdown began: both the ones reapLoop
// had already accepted into s.inFlight and any new arrivals still
// sitting in s.handles.
func (s *Supervisor) joinClientWorkers() {
	var wg sync.WaitGroup

	// A closed channel, unlike time.After's, broadcasts to every
	// goroutine selecting on it, so every outstanding client worker
	// observes the same deadline.
	deadline := make(chan struct{})
	timer := time.AfterFunc(5*time.Second, func() { close(deadline) })
	defer timer.Stop()

	join := func(done <-chan StreamResult) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case result := <-done:
				s.evict(context.Background(), result)
			case <-deadline:
			}
		}()
	}

	for _, done := range s.inFlight {
		join(done)
	}
	s.inFlight = nil

	drain := true
	for drain {
		select {
		case h, ok := <-s.handles:
			if !ok {
				drain = false
				continue
			}
			join(h.Done)
		default:
			drain = false
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-deadline:
		slog.Warn("timed out waiting for client workers to drain")
	}
}
