package probe

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/zxhio/wolping/internal/errcode"
	"github.com/zxhio/wolping/internal/iface"
	"github.com/zxhio/wolping/pkg/fastpkt"
	"github.com/zxhio/wolping/pkg/netaddr"
	"golang.org/x/sys/unix"
)

const (
	SizeofARPProbe  = fastpkt.SizeofEthernet + fastpkt.SizeofARPEthIPv4
	SizeofICMPProbe = fastpkt.SizeofEthernet + fastpkt.SizeofIPv4 + fastpkt.SizeofICMP

	// MaxICMPPayload keeps the IPv4 total length within 16 bits.
	MaxICMPPayload = 0xffff - fastpkt.SizeofIPv4 - fastpkt.SizeofICMP
)

// Source is the local end the probes are sent from.
type Source struct {
	HwAddr netaddr.HwAddr
	IP     netaddr.IPv4Addr
}

// NewSource takes the hardware address and the first IPv4 address of link.
func NewSource(link iface.Link) (Source, error) {
	hw, err := link.HwAddr()
	if err != nil {
		return Source{}, err
	}
	ip, ok := link.IPv4Addr()
	if !ok {
		return Source{}, errcode.New(errcode.NoInterfaceFound, "link %s has no ipv4 address", link.Name)
	}
	return Source{HwAddr: hw, IP: ip}, nil
}

// BuildARPProbe returns a broadcast ARP request asking for the limited
// broadcast address, with the target hardware address set to the address
// under test. Asking for 255.255.255.255 is intentional, hosts still answer
// or log it.
func BuildARPProbe(src Source, target netaddr.HwAddr) []byte {
	builder := fastpkt.NewPacketBuilder(make([]byte, SizeofARPProbe))

	msg := fastpkt.NewARPRequest(src.HwAddr, src.IP, target, netaddr.IPv4Broadcast)
	msg.MarshalTo(builder.AllocARP())

	eth := builder.AllocEthernet()
	eth.HwDest = netaddr.HwAddrBroadcast
	eth.HwSource = src.HwAddr
	eth.SetProto(unix.ETH_P_ARP)

	return builder.Bytes()
}

type icmpOpts struct {
	id      uint16
	seq     uint16
	payload []byte
}

type ICMPOpt func(*icmpOpts)

func WithEchoID(id uint16) ICMPOpt {
	return func(o *icmpOpts) { o.id = id }
}

func WithEchoSeq(seq uint16) ICMPOpt {
	return func(o *icmpOpts) { o.seq = seq }
}

func WithEchoPayload(payload []byte) ICMPOpt {
	return func(o *icmpOpts) { o.payload = payload }
}

// BuildICMPProbe returns an ICMP echo request in an IPv4 datagram to the
// limited broadcast address, framed directly to the target hardware address.
// Identifier and sequence default to zero. Payloads longer than
// MaxICMPPayload are rejected.
func BuildICMPProbe(src Source, target netaddr.HwAddr, opts ...ICMPOpt) ([]byte, error) {
	var o icmpOpts
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.payload) > MaxICMPPayload {
		return nil, errors.Errorf("icmp payload too large: %d > %d", len(o.payload), MaxICMPPayload)
	}

	builder := fastpkt.NewPacketBuilder(make([]byte, SizeofICMPProbe+len(o.payload)))

	// Payload
	copy(builder.Alloc(len(o.payload)), o.payload)

	// L4
	icmp := builder.AllocICMP()
	icmp.Type = fastpkt.ICMPv4TypeEchoRequest
	icmp.Code = 0
	icmp.SetEcho(o.id, o.seq)
	icmp.SetChecksum(uint16(len(o.payload)))

	// L3
	ip := builder.AllocIPv4()
	ip.SetHeaderLen(uint8(fastpkt.SizeofIPv4))
	ip.TTL = fastpkt.IPv4DefaultTTL
	ip.Protocol = unix.IPPROTO_ICMP
	ip.SetSrc(src.IP)
	ip.SetDst(netaddr.IPv4Broadcast)
	ip.SetChecksum(uint16(fastpkt.SizeofICMP + len(o.payload)))

	// L2
	eth := builder.AllocEthernet()
	eth.HwDest = target
	eth.HwSource = src.HwAddr
	eth.SetProto(unix.ETH_P_IP)

	return builder.Bytes(), nil
}

// Sender writes complete link-layer frames.
type Sender interface {
	Transmit(frame []byte) error
}

type Transmitter struct {
	sender   Sender
	src      Source
	icmpOpts []ICMPOpt
}

func NewTransmitter(sender Sender, src Source, opts ...ICMPOpt) *Transmitter {
	return &Transmitter{sender: sender, src: src, icmpOpts: opts}
}

// Send builds one probe for target and writes it, returning the frame sent.
func (t *Transmitter) Send(mode Mode, target netaddr.HwAddr) ([]byte, error) {
	var (
		frame []byte
		err   error
	)
	switch mode {
	case ModeARP:
		frame = BuildARPProbe(t.src, target)
	case ModeICMP:
		frame, err = BuildICMPProbe(t.src, target, t.icmpOpts...)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("invalid probe mode: %d", mode)
	}

	if err = t.sender.Transmit(frame); err != nil {
		if _, ok := errcode.KindOf(err); ok {
			return nil, errors.Wrapf(err, "send %s probe", mode)
		}
		return nil, errcode.Wrap(errcode.IoFailure, err, "send %s probe", mode)
	}

	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.WithFields(logrus.Fields{
			"mode":   mode,
			"target": target,
			"len":    len(frame),
		}).Debug(fastpkt.Format(frame, fastpkt.WithFormatEthernet()))
	}
	return frame, nil
}
