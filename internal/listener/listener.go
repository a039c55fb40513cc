package listener

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zxhio/wolping/internal/errcode"
	"github.com/zxhio/wolping/pkg/fastpkt"
	"github.com/zxhio/wolping/pkg/netaddr"
	"github.com/zxhio/wolping/pkg/netutil"
	"golang.org/x/sys/unix"
)

const DefaultFrameSize = 2048

// Kind is the protocol of a reported reply.
type Kind int

const (
	KindARP Kind = 1 << iota
	KindICMP

	KindAll = KindARP | KindICMP
)

func (k Kind) String() string {
	switch k {
	case KindARP:
		return "arp"
	case KindICMP:
		return "icmp"
	case KindAll:
		return "all"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// State of the receive loop.
type State int

const (
	StateListening State = iota
	StateMatched
)

func (s State) String() string {
	if s == StateMatched {
		return "matched"
	}
	return "listening"
}

// Reply is a received frame that passed the filter.
type Reply struct {
	Kind   Kind
	Source netaddr.HwAddr // Ethernet source

	// ARP
	Operation    uint16
	SenderHwAddr netaddr.HwAddr
	SenderIP     netaddr.IPv4Addr

	// ICMP
	ICMPType uint8
	ICMPCode uint8
	ID       uint16
	Seq      uint16
	SrcIP    netaddr.IPv4Addr

	Time  time.Time
	Frame []byte
}

func (r Reply) String() string {
	if r.Kind == KindARP {
		return fmt.Sprintf("arp op %d from %s: sender %s (%s)", r.Operation, r.Source, r.SenderHwAddr, r.SenderIP)
	}
	return fmt.Sprintf("icmp type %d code %d from %s (%s), id %d, seq %d", r.ICMPType, r.ICMPCode, r.Source, r.SrcIP, r.ID, r.Seq)
}

func (r Reply) Fields() logrus.Fields {
	fields := logrus.Fields{"kind": r.Kind, "source": r.Source}
	if r.Kind == KindARP {
		fields["operation"] = r.Operation
		fields["sender_hw_addr"] = r.SenderHwAddr
		fields["sender_ip"] = r.SenderIP
	} else {
		fields["type"] = r.ICMPType
		fields["code"] = r.ICMPCode
		fields["src_ip"] = r.SrcIP
	}
	return fields
}

// FrameSource yields raw Ethernet frames. outgoing marks frames this host
// sent itself.
type FrameSource interface {
	ReadFrame(ctx context.Context, buf []byte) (n int, outgoing bool, err error)
}

type listenerOpts struct {
	kinds     Kind
	sender    *netaddr.HwAddr
	frameSize int
}

type Opt func(*listenerOpts)

// WithKinds limits the reported replies, both ARP and ICMP by default.
func WithKinds(kinds Kind) Opt {
	return func(o *listenerOpts) { o.kinds = kinds }
}

// WithSender only reports replies whose Ethernet source is hw.
func WithSender(hw netaddr.HwAddr) Opt {
	return func(o *listenerOpts) { o.sender = &hw }
}

func WithFrameSize(n int) Opt {
	return func(o *listenerOpts) { o.frameSize = n }
}

type Listener struct {
	src   FrameSource
	buf   []byte
	pkt   fastpkt.Packet
	state State
	stat  netutil.Statistics
	*listenerOpts
}

func New(src FrameSource, opts ...Opt) *Listener {
	o := listenerOpts{kinds: KindAll, frameSize: DefaultFrameSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Listener{src: src, buf: make([]byte, o.frameSize), listenerOpts: &o}
}

func (l *Listener) State() State { return l.state }

// Stats counts matched (rx_packets) and ignored (rx_skipped) frames.
func (l *Listener) Stats() netutil.Statistics {
	l.stat.Timestamp = time.Now()
	return l.stat
}

// Match reports whether frame is an ARP packet or an ICMP echo reply
// accepted by the filter. Frames that fail to decode never match.
func (l *Listener) Match(frame []byte) (Reply, bool) {
	if err := l.pkt.DecodeFromData(frame); err != nil {
		return Reply{}, false
	}
	if l.sender != nil && l.pkt.SrcMAC != *l.sender {
		return Reply{}, false
	}

	reply := Reply{Source: l.pkt.SrcMAC}
	switch {
	case l.pkt.L3Proto == unix.ETH_P_ARP:
		reply.Kind = KindARP
		reply.Operation = l.pkt.ARP.Operation
		reply.SenderHwAddr = l.pkt.ARP.SenderHwAddr
		reply.SenderIP = l.pkt.ARP.SenderIP
	case l.pkt.L4Proto == unix.IPPROTO_ICMP && l.pkt.ICMPType == fastpkt.ICMPv4TypeEchoReply:
		reply.Kind = KindICMP
		reply.ICMPType = l.pkt.ICMPType
		reply.ICMPCode = l.pkt.ICMPCode
		reply.ID = l.pkt.ICMPID
		reply.Seq = l.pkt.ICMPSeq
		reply.SrcIP = l.pkt.SrcIP
	default:
		return Reply{}, false
	}

	if l.kinds&reply.Kind == 0 {
		return Reply{}, false
	}
	return reply, true
}

// Next reads frames until one matches. Context errors are returned as is,
// read failures as IoFailure.
func (l *Listener) Next(ctx context.Context) (Reply, error) {
	l.state = StateListening
	for {
		n, outgoing, err := l.src.ReadFrame(ctx, l.buf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Reply{}, ctxErr
			}
			if _, ok := errcode.KindOf(err); ok {
				return Reply{}, err
			}
			return Reply{}, errcode.Wrap(errcode.IoFailure, err, "read frame")
		}

		if outgoing {
			l.stat.RxSkipped++
			continue
		}

		reply, ok := l.Match(l.buf[:n])
		if !ok {
			l.stat.RxSkipped++
			continue
		}

		l.state = StateMatched
		l.stat.RxPackets++
		l.stat.RxBytes += uint64(n)
		reply.Time = time.Now()
		reply.Frame = append([]byte(nil), l.buf[:n]...)

		if logrus.GetLevel() >= logrus.DebugLevel {
			logrus.WithFields(reply.Fields()).Debug(fastpkt.Format(reply.Frame, fastpkt.WithFormatEthernet()))
		}
		return reply, nil
	}
}

// Run calls fn for every reply until fn returns false, ctx is done or a
// read fails.
func (l *Listener) Run(ctx context.Context, fn func(Reply) bool) error {
	for {
		reply, err := l.Next(ctx)
		if err != nil {
			return err
		}
		if !fn(reply) {
			return nil
		}
	}
}
