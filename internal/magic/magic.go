package magic

import (
	"net"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zxhio/wolping/internal/errcode"
	"github.com/zxhio/wolping/pkg/netaddr"
	"golang.org/x/sys/unix"
)

const (
	syncStreamLen = 6
	repeat        = 16

	// Size of the magic packet payload: 6 bytes of 0xFF followed by the
	// hardware address 16 times.
	Size = syncStreamLen + repeat*len(netaddr.HwAddr{})

	DefaultPort = 9
)

var DefaultSendAddr = &net.UDPAddr{IP: net.IPv4bcast, Port: DefaultPort}

// Packet is a Wake-on-LAN magic packet payload.
type Packet [Size]byte

// Build lays out the magic packet for hw.
func Build(hw netaddr.HwAddr) Packet {
	var pkt Packet
	for i := 0; i < syncStreamLen; i++ {
		pkt[i] = 0xff
	}
	for off := syncStreamLen; off < Size; off += len(hw) {
		copy(pkt[off:], hw[:])
	}
	return pkt
}

// ParseHwAddr parses a colon separated hexadecimal hardware address.
//
// Every segment is parsed before the segment count is checked, so a bad
// segment is a ParseFailure even when the count is also wrong.
func ParseHwAddr(s string) (netaddr.HwAddr, error) {
	segs := strings.Split(s, ":")
	octets := make([]byte, 0, len(segs))
	for _, seg := range segs {
		v, err := strconv.ParseUint(seg, 16, 8)
		if err != nil {
			return netaddr.HwAddr{}, errcode.Wrap(errcode.ParseFailure, err, "segment %q of %q", seg, s)
		}
		octets = append(octets, byte(v))
	}

	var hw netaddr.HwAddr
	if len(octets) != len(hw) {
		return netaddr.HwAddr{}, errcode.New(errcode.InvalidAddressLength, "%q has %d segments", s, len(octets))
	}
	copy(hw[:], octets)
	return hw, nil
}

// Parse is ParseHwAddr followed by Build.
func Parse(s string) (Packet, error) {
	hw, err := ParseHwAddr(s)
	if err != nil {
		return Packet{}, err
	}
	return Build(hw), nil
}

// HwAddr returns the hardware address the packet wakes.
func (pkt *Packet) HwAddr() netaddr.HwAddr {
	var hw netaddr.HwAddr
	copy(hw[:], pkt[syncStreamLen:])
	return hw
}

func (pkt *Packet) Bytes() []byte { return pkt[:] }

type sendOpts struct {
	addr *net.UDPAddr
}

type SendOpt func(*sendOpts)

// WithSendAddr sends to addr instead of 255.255.255.255:9, e.g. a directed
// subnet broadcast or port 7.
func WithSendAddr(addr *net.UDPAddr) SendOpt {
	return func(o *sendOpts) { o.addr = addr }
}

// Send transmits the packet as one UDP datagram from an ephemeral port with
// broadcast enabled.
func (pkt *Packet) Send(opts ...SendOpt) error {
	o := sendOpts{addr: DefaultSendAddr}
	for _, opt := range opts {
		opt(&o)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return errcode.Wrap(errcode.IoFailure, err, "bind udp socket")
	}
	defer conn.Close()

	if err := setBroadcast(conn); err != nil {
		return errcode.Wrap(errcode.IoFailure, err, "set broadcast")
	}

	n, err := conn.WriteToUDP(pkt[:], o.addr)
	if err != nil {
		return errcode.Wrap(errcode.IoFailure, err, "send to %s", o.addr)
	}
	if n != len(pkt) {
		return errcode.New(errcode.IoFailure, "short write to %s: %d/%d", o.addr, n, len(pkt))
	}

	logrus.WithFields(logrus.Fields{
		"hw_addr": pkt.HwAddr(),
		"local":   conn.LocalAddr(),
		"remote":  o.addr,
		"bytes":   n,
	}).Debug("Sent magic packet")
	return nil
}

func setBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
