// Package daemon implements the cefnetd process lifecycle: load
// configuration, build the FIB and face registry, start the control
// socket and configured listen faces, run the forwarding loop, and
// react to OS signals for shutdown and config reload.
package daemon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/cefore-go/cefnetd/internal/ccninfo"
	"github.com/cefore-go/cefnetd/internal/config"
	"github.com/cefore-go/cefnetd/internal/control"
	"github.com/cefore-go/cefnetd/internal/face"
	"github.com/cefore-go/cefnetd/internal/face/rawface"
	"github.com/cefore-go/cefnetd/internal/fib"
	logpkg "github.com/cefore-go/cefnetd/internal/log"
	"github.com/cefore-go/cefnetd/internal/metrics"
	"github.com/cefore-go/cefnetd/internal/wire"
	"github.com/cefore-go/cefnetd/internal/wire/validate"
)

// Daemon owns the forwarder's FIB, face registry, control socket, and
// forwarding-loop goroutines for the lifetime of one process.
type Daemon struct {
	config     *config.GlobalConfig
	configPath string

	table    *fib.Table
	faces    *face.Registry
	control  *control.Server
	metrics  *metrics.Server
	rawFace  *rawface.RawFace
	nodeID   []byte
	validator wire.Validator

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownChan chan struct{}
	sigChan      chan os.Signal

	mu      sync.Mutex
	closers []io.Closer
}

// New loads configuration from configPath and builds an unstarted
// Daemon.
func New(configPath string) (*Daemon, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	d := &Daemon{
		config:       cfg,
		configPath:   configPath,
		table:        fib.NewTable(),
		shutdownChan: make(chan struct{}),
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d, nil
}

// Start initializes logging, the FIB, the face registry, the control
// socket, the configured listen faces, and the metrics server.
func (d *Daemon) Start() error {
	if err := logpkg.Init(d.config.Log); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	slog.Info("starting cefnetd",
		"hostname", d.config.Node.Hostname,
		"node_ip", d.config.Node.IP,
		"config", d.configPath,
	)

	nodeIP := net.ParseIP(d.config.Node.IP)
	if nodeIP == nil || nodeIP.To4() == nil {
		return fmt.Errorf("invalid node.ip %q: must be an IPv4 address", d.config.Node.IP)
	}
	d.nodeID = nodeIP.To4()

	if d.config.Validation.Algorithm != "" {
		v, err := newValidator(d.config.Validation)
		if err != nil {
			return fmt.Errorf("failed to build validator: %w", err)
		}
		d.validator = v
	}

	d.faces = face.NewRegistry(face.NetDialer())

	if err := d.loadFIBConfig(); err != nil {
		return fmt.Errorf("failed to load FIB config: %w", err)
	}

	if err := d.startListenFaces(); err != nil {
		return fmt.Errorf("failed to start listen faces: %w", err)
	}

	if err := d.startRawFace(); err != nil {
		return fmt.Errorf("failed to start raw face: %w", err)
	}

	d.control = control.NewServer(d.config.Control.Socket, d.table, d.faces)
	go func() {
		if err := d.control.Start(d.ctx); err != nil && d.ctx.Err() == nil {
			slog.Error("control socket failed", "error", err)
		}
	}()

	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	if err := d.startMetrics(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	slog.Info("cefnetd started")
	return nil
}

func (d *Daemon) loadFIBConfig() error {
	path := d.config.FIB.ConfigFile
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("fib config file not found, starting with empty FIB", "path", path)
			return nil
		}
		return err
	}
	defer f.Close()
	if err := fib.LoadConfig(f, d.table, d.faces); err != nil {
		return err
	}
	metrics.FIBEntriesTotal.Set(float64(d.table.Len()))
	return nil
}

func (d *Daemon) startListenFaces() error {
	for _, lc := range d.config.Face.Listen {
		lc := lc
		switch lc.Protocol {
		case "tcp":
			ln, err := face.ListenTCP(d.faces, lc.Address, d.onAcceptTCP)
			if err != nil {
				return err
			}
			d.mu.Lock()
			d.closers = append(d.closers, ln)
			d.mu.Unlock()
		case "udp":
			conn, err := face.ListenUDP(lc.Address, d.onUDPPacket)
			if err != nil {
				return err
			}
			d.mu.Lock()
			d.closers = append(d.closers, conn)
			d.mu.Unlock()
		default:
			return fmt.Errorf("unknown face.listen protocol %q", lc.Protocol)
		}
		slog.Info("listening for faces", "protocol", lc.Protocol, "address", lc.Address)
	}
	return nil
}

func (d *Daemon) startRawFace() error {
	if !d.config.Face.Raw.Enabled {
		return nil
	}
	opts := rawface.FromConfig(d.config.Face.Raw)
	var rf *rawface.RawFace
	id := d.faces.Register(func(id uint16) face.Face {
		rf = rawface.New(id, opts)
		return rf
	})
	if err := rf.Open(); err != nil {
		return err
	}
	d.rawFace = rf
	go d.rawFaceReadLoop(rf, id)
	slog.Info("raw face opened", "interface", opts.NetworkInterface)
	return nil
}

func (d *Daemon) onAcceptTCP(f face.Face, conn net.Conn) {
	go func() {
		buf := make([]byte, wire.MaxMsgSize)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			d.handleInboundPacket(f.ID(), buf[:n])
		}
	}()
}

func (d *Daemon) onUDPPacket(data []byte, from net.Addr) {
	id, err := d.faces.ResolveFace(fib.ProtocolToken["udp"], from.String(), false)
	if err != nil {
		id, err = d.faces.ResolveFace(fib.ProtocolToken["udp"], from.String(), true)
		if err != nil {
			slog.Warn("failed to resolve face for inbound udp packet", "from", from, "error", err)
			return
		}
	}
	d.handleInboundPacket(id, data)
}

func (d *Daemon) rawFaceReadLoop(rf *rawface.RawFace, id uint16) {
	for {
		frame, err := rf.ReadMessage()
		if err != nil {
			if d.ctx.Err() != nil {
				return
			}
			continue
		}
		if frame == nil {
			continue
		}
		d.handleInboundPacket(id, frame.Payload)
	}
}

// handleInboundPacket runs the spec's one fully specified on-path
// behavior -- Ccninfo discovery stamping/reply generation -- for every
// inbound packet that parses as one. Interest and Content Object
// forwarding is a PIT/Content-Store decision explicitly out of scope
// (spec.md Non-goals); a packet of either type is forwarded blind to
// every face the FIB's longest-prefix lookup returns, with no
// dedup/caching layer.
func (d *Daemon) handleInboundPacket(inFace uint16, data []byte) {
	hdr, err := wire.ReadHeader(data)
	if err != nil {
		slog.Debug("dropping malformed packet", "face", inFace, "error", err)
		metrics.CodecErrorsTotal.WithLabelValues("header").Inc()
		return
	}

	if hdr.Type == wire.PTRequest {
		d.handleCcninfoRequest(inFace, data)
		return
	}

	d.forwardByName(data)
}

func (d *Daemon) handleCcninfoRequest(inFace uint16, buf []byte) {
	req, err := wire.ParseCcninfo(buf)
	if err != nil {
		slog.Debug("dropping malformed ccninfo request", "error", err)
		metrics.CodecErrorsTotal.WithLabelValues("ccninfo").Inc()
		return
	}

	lookup := func(name wire.Name) ([]uint16, bool) {
		entry, ok := d.table.Lookup(name.Bytes())
		if !ok {
			return nil, false
		}
		faces := entry.Faces()
		ids := make([]uint16, len(faces))
		for i, fr := range faces {
			ids[i] = fr.FaceID
		}
		return ids, true
	}

	decision, outBuf, err := ccninfo.ProcessRequest(buf, req, d.nodeID, lookup, d.validator)
	if err != nil {
		slog.Warn("ccninfo processing failed", "error", err)
		return
	}

	if !decision.Forward {
		metrics.CcninfoRequestsTotal.WithLabelValues("terminated").Inc()
		replyCode, rerr := wire.ParseCcninfo(decision.Reply)
		if rerr == nil {
			metrics.CcninfoRepliesTotal.WithLabelValues(fmt.Sprintf("0x%02x", replyCode.RetCode)).Inc()
		}
		d.sendOnEveryFace([]uint16{inFace}, decision.Reply)
		return
	}
	metrics.CcninfoRequestsTotal.WithLabelValues("forwarded").Inc()
	d.sendOnEveryFace(decision.FaceIDs, outBuf)
}

func (d *Daemon) forwardByName(buf []byte) {
	_, pm, err := wire.Parse(buf, 0)
	if err != nil {
		metrics.CodecErrorsTotal.WithLabelValues("forward").Inc()
		return
	}
	topType := fmt.Sprintf("0x%04x", uint16(pm.TopType))
	entry, ok := d.table.Lookup(pm.Name.Bytes())
	if !ok {
		metrics.PacketsForwardedTotal.WithLabelValues(topType, "no_route").Inc()
		return
	}
	for _, fr := range entry.Faces() {
		d.sendOnFace(fr.FaceID, buf)
	}
	metrics.PacketsForwardedTotal.WithLabelValues(topType, "forwarded").Inc()
}

func (d *Daemon) sendOnEveryFace(ids []uint16, buf []byte) {
	for _, id := range ids {
		d.sendOnFace(id, buf)
	}
}

func (d *Daemon) sendOnFace(id uint16, buf []byte) {
	f, ok := d.faces.Get(id)
	if !ok {
		return
	}
	if err := f.Send(buf); err != nil {
		slog.Warn("failed to send on face", "face", id, "error", err)
	}
}

// Stop performs graceful shutdown: close the control socket and every
// face, stop the metrics server, cancel the context, remove the PID
// file.
func (d *Daemon) Stop() {
	slog.Info("stopping cefnetd")

	if d.control != nil {
		d.control.Stop()
	}

	d.mu.Lock()
	for _, c := range d.closers {
		c.Close()
	}
	d.mu.Unlock()

	if d.faces != nil {
		if err := d.faces.CloseAll(); err != nil {
			slog.Error("error closing faces", "error", err)
		}
	}

	if d.metrics != nil {
		if err := d.metrics.Stop(d.ctx); err != nil {
			slog.Error("error stopping metrics server", "error", err)
		}
	}

	d.cancel()
	if d.sigChan != nil {
		signal.Stop(d.sigChan)
	}

	if err := d.removePIDFile(); err != nil {
		slog.Error("error removing PID file", "error", err)
	}

	slog.Info("cefnetd stopped")
}

// Run blocks until a shutdown signal (SIGTERM/SIGINT), a reload signal
// (SIGHUP), or an externally triggered shutdown is received.
func (d *Daemon) Run() error {
	d.sigChan = make(chan os.Signal, 1)
	signal.Notify(d.sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	slog.Info("cefnetd running, waiting for signals")

	for {
		select {
		case sig := <-d.sigChan:
			switch sig {
			case syscall.SIGTERM, syscall.SIGINT:
				slog.Info("received shutdown signal", "signal", sig)
				d.Stop()
				return nil
			case syscall.SIGHUP:
				if err := d.Reload(); err != nil {
					slog.Error("failed to reload config", "error", err)
				}
			}
		case <-d.shutdownChan:
			d.Stop()
			return nil
		case <-d.ctx.Done():
			d.Stop()
			return d.ctx.Err()
		}
	}
}

// TriggerShutdown requests graceful shutdown from outside the signal
// path (e.g. a control-plane stop command).
func (d *Daemon) TriggerShutdown() {
	select {
	case d.shutdownChan <- struct{}{}:
	default:
	}
}

// Reload re-reads the FIB config file and log settings. Face listen
// addresses and node identity are cold-reload only (require restart).
func (d *Daemon) Reload() error {
	slog.Info("reloading configuration", "path", d.configPath)

	newConfig, err := config.Load(d.configPath)
	if err != nil {
		return fmt.Errorf("failed to load new config: %w", err)
	}
	d.config = newConfig

	if err := logpkg.Init(d.config.Log); err != nil {
		slog.Error("failed to reinitialize logging", "error", err)
	}

	if err := d.loadFIBConfig(); err != nil {
		slog.Warn("failed to reload fib config", "error", err)
	}

	slog.Info("configuration reloaded")
	return nil
}

// newValidator builds the configured validation algorithm. "sha256"
// uses the configured HMAC key; "crc32" ignores it (unkeyed).
func newValidator(cfg config.ValidationConfig) (wire.Validator, error) {
	if cfg.Algorithm == "sha256" && cfg.Key != "" {
		return validate.NewHMACSHA256([]byte(cfg.Key)), nil
	}
	factory, err := validate.GetFactory(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	return factory(), nil
}

func (d *Daemon) startMetrics() error {
	if !d.config.Metrics.Enabled {
		return nil
	}
	d.metrics = metrics.NewServer(d.config.Metrics.Listen, d.config.Metrics.Path)
	return d.metrics.Start(d.ctx)
}

func (d *Daemon) writePIDFile() error {
	path := d.config.Control.PIDFile
	if path == "" {
		return nil
	}
	data := []byte(strconv.Itoa(os.Getpid()) + "\n")
	return os.WriteFile(path, data, 0644)
}

func (d *Daemon) removePIDFile() error {
	path := d.config.Control.PIDFile
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
