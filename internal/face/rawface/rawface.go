package rawface

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/pcap"

	"github.com/cefore-go/cefnetd/internal/decoder"
	"github.com/cefore-go/cefnetd/internal/face"
	"github.com/cefore-go/cefnetd/internal/utils"
)

// ErrSendUnsupported is returned by Send: a raw face only decodes
// inbound traffic off an interface it doesn't own the other end of --
// answering back means routing through a dialed TCP/UDP face instead,
// not re-encapsulating an Ethernet/IP/UDP frame by hand.
var ErrSendUnsupported = errors.New("rawface: sending is not supported, this face is receive-only")

// RawFace is an AF_PACKET-backed Face: it owns a TPacket ring buffer
// and decodes frames off it into Cefore payloads on demand via
// ReadMessage. Grounded on the teacher's afpacketHandle
// (internal/otus/module/capture/handle/handle_afpacket.go).
type RawFace struct {
	id      uint16
	opts    Options
	tpacket *afpacket.TPacket
	ds      gopacket.PacketDataSource
	dec     *decoder.Decoder
}

// New returns an unopened RawFace; call Open before reading.
func New(id uint16, opts Options) *RawFace {
	return &RawFace{id: id, opts: opts, dec: decoder.NewDecoder(30 * time.Second)}
}

func (f *RawFace) ID() uint16       { return f.id }
func (f *RawFace) Type() face.Type { return face.TypeRaw }

func (f *RawFace) Send([]byte) error { return ErrSendUnsupported }

// Open binds the AF_PACKET socket to the configured interface, sets up
// the frame/block ring per the teacher's sizing rule, and applies
// fanout/BPF filtering if configured.
func (f *RawFace) Open() error {
	if err := f.opts.validate(); err != nil {
		return err
	}

	iface, err := net.InterfaceByName(f.opts.NetworkInterface)
	if err != nil {
		return fmt.Errorf("rawface: interface %s: %w", f.opts.NetworkInterface, err)
	}

	frameSize, blockSize, numBlocks, err := computeFrameSizeAndBlocks(f.opts.SnapLen, f.opts.BufferSize)
	if err != nil {
		return fmt.Errorf("rawface: %w", err)
	}

	tpacket, err := afpacket.NewTPacket(
		afpacket.OptInterface(iface.Name),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.OptPollTimeout(pollTimeout(f.opts.TimeoutMS)),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return fmt.Errorf("rawface: open tpacket on %s: %w", iface.Name, err)
	}
	f.tpacket = tpacket
	f.ds = gopacket.PacketDataSource(tpacket)

	if f.opts.FanoutID > 0 {
		if err := tpacket.SetFanout(afpacket.FanoutHashWithDefrag, f.opts.FanoutID); err != nil {
			tpacket.Close()
			return fmt.Errorf("rawface: set fanout %d: %w", f.opts.FanoutID, err)
		}
	}

	if f.opts.Filter != "" {
		rawBPF, err := utils.CompileBpf(f.opts.Filter, f.opts.SnapLen)
		if err != nil {
			tpacket.Close()
			return fmt.Errorf("rawface: compile filter %q: %w", f.opts.Filter, err)
		}
		if err := tpacket.SetBPF(rawBPF); err != nil {
			tpacket.Close()
			return fmt.Errorf("rawface: set filter: %w", err)
		}
	}

	slog.Info("raw face opened", "interface", iface.Name, "frame_size", frameSize, "block_size", blockSize, "num_blocks", numBlocks)
	return nil
}

// ReadMessage reads and decodes the next frame. It returns
// decoder.ErrNoUDPPayload for a frame that isn't UDP-carrying (the
// caller should simply loop past it, not treat it as fatal), and a nil
// frame with a nil error when the poll timeout expires or the frame was
// an IP fragment still awaiting reassembly.
func (f *RawFace) ReadMessage() (*decoder.Frame, error) {
	data, ci, err := f.ds.ReadPacketData()
	if err != nil {
		if isTimeout(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("rawface: read packet: %w", err)
	}
	return f.dec.Decode(data, ci)
}

func (f *RawFace) Close() error {
	if f.tpacket == nil {
		return nil
	}
	f.tpacket.Close()
	return nil
}

func isTimeout(err error) bool {
	if err == pcap.NextErrorTimeoutExpired || errors.Is(err, syscall.EAGAIN) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func pollTimeout(ms int) time.Duration {
	if ms <= 0 {
		return pcap.BlockForever
	}
	return time.Duration(ms) * time.Millisecond
}

func computeFrameSizeAndBlocks(snapLen, bufferSize int) (frameSize, blockSize, numBlocks int, err error) {
	pageSize := os.Getpagesize()
	if snapLen < pageSize {
		frameSize = pageSize / (pageSize / snapLen)
	} else {
		frameSize = (snapLen/pageSize + 1) * pageSize
	}
	blockSize = frameSize * 128
	numBlocks = bufferSize / blockSize
	if numBlocks < 1 {
		return 0, 0, 0, fmt.Errorf("buffer_size too small for frame size %d", frameSize)
	}
	return frameSize, blockSize, numBlocks, nil
}
