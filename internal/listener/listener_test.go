package listener

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/zxhio/wolping/internal/errcode"
	"github.com/zxhio/wolping/internal/probe"
	"github.com/zxhio/wolping/pkg/netaddr"
)

var (
	testLocal  = probe.Source{HwAddr: netaddr.HwAddr{0x02, 0x42, 0xac, 0x11, 0x00, 0x02}, IP: netaddr.IPv4Addr(0xac110002)}
	testTarget = netaddr.HwAddr{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	testOther  = netaddr.HwAddr{0x00, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e}
)

type frame struct {
	data     []byte
	outgoing bool
}

type fakeSource struct {
	frames []frame
	err    error // returned once frames are exhausted, nil blocks until ctx is done
}

func (s *fakeSource) ReadFrame(ctx context.Context, buf []byte) (int, bool, error) {
	if len(s.frames) == 0 {
		if s.err != nil {
			return 0, false, s.err
		}
		<-ctx.Done()
		return 0, false, ctx.Err()
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return copy(buf, f.data), f.outgoing, nil
}

func serialize(t *testing.T, layers ...gopacket.SerializableLayer) []byte {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, layers...); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func arpReply(t *testing.T, from netaddr.HwAddr, ip net.IP) []byte {
	return serialize(t,
		&layers.Ethernet{SrcMAC: from.ToHardwareAddr(), DstMAC: testLocal.HwAddr.ToHardwareAddr(), EthernetType: layers.EthernetTypeARP},
		&layers.ARP{
			AddrType:          layers.LinkTypeEthernet,
			Protocol:          layers.EthernetTypeIPv4,
			HwAddressSize:     6,
			ProtAddressSize:   4,
			Operation:         layers.ARPReply,
			SourceHwAddress:   from[:],
			SourceProtAddress: ip.To4(),
			DstHwAddress:      testLocal.HwAddr[:],
			DstProtAddress:    []byte{172, 17, 0, 2},
		},
	)
}

func icmpFrame(t *testing.T, from netaddr.HwAddr, typ uint8, id, seq uint16) []byte {
	return serialize(t,
		&layers.Ethernet{SrcMAC: from.ToHardwareAddr(), DstMAC: testLocal.HwAddr.ToHardwareAddr(), EthernetType: layers.EthernetTypeIPv4},
		&layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolICMPv4, SrcIP: net.IPv4(172, 17, 0, 9), DstIP: net.IPv4(172, 17, 0, 2)},
		&layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(typ, 0), Id: id, Seq: seq},
	)
}

func TestMatch(t *testing.T) {
	l := New(&fakeSource{})

	reply, ok := l.Match(arpReply(t, testTarget, net.IPv4(172, 17, 0, 9)))
	if assert.True(t, ok) {
		assert.Equal(t, KindARP, reply.Kind)
		assert.Equal(t, testTarget, reply.Source)
		assert.Equal(t, testTarget, reply.SenderHwAddr)
		assert.Equal(t, "172.17.0.9", reply.SenderIP.String())
		assert.Equal(t, uint16(layers.ARPReply), reply.Operation)
	}

	reply, ok = l.Match(icmpFrame(t, testTarget, layers.ICMPv4TypeEchoReply, 7, 8))
	if assert.True(t, ok) {
		assert.Equal(t, KindICMP, reply.Kind)
		assert.Equal(t, testTarget, reply.Source)
		assert.Equal(t, uint8(0), reply.ICMPType)
		assert.Equal(t, uint16(7), reply.ID)
		assert.Equal(t, uint16(8), reply.Seq)
		assert.Equal(t, "172.17.0.9", reply.SrcIP.String())
	}

	// Not a match
	_, ok = l.Match(icmpFrame(t, testTarget, layers.ICMPv4TypeEchoRequest, 0, 0))
	assert.False(t, ok)
	_, ok = l.Match(icmpFrame(t, testTarget, layers.ICMPv4TypeDestinationUnreachable, 0, 0))
	assert.False(t, ok)
	_, ok = l.Match([]byte{0xff, 0xff})
	assert.False(t, ok)
	_, ok = l.Match(serialize(t,
		&layers.Ethernet{SrcMAC: testTarget.ToHardwareAddr(), DstMAC: testLocal.HwAddr.ToHardwareAddr(), EthernetType: layers.EthernetTypeIPv6},
		&layers.IPv6{Version: 6, HopLimit: 1, NextHeader: layers.IPProtocolNoNextHeader, SrcIP: net.ParseIP("fe80::1"), DstIP: net.ParseIP("fe80::2")},
	))
	assert.False(t, ok)

	// Our own ARP probe is still an ARP packet
	_, ok = l.Match(probe.BuildARPProbe(testLocal, testTarget))
	assert.True(t, ok)
}

func TestMatchFilter(t *testing.T) {
	arp := arpReply(t, testTarget, net.IPv4(172, 17, 0, 9))
	icmp := icmpFrame(t, testOther, layers.ICMPv4TypeEchoReply, 0, 0)

	l := New(&fakeSource{}, WithKinds(KindICMP))
	_, ok := l.Match(arp)
	assert.False(t, ok)
	_, ok = l.Match(icmp)
	assert.True(t, ok)

	l = New(&fakeSource{}, WithSender(testTarget))
	_, ok = l.Match(arp)
	assert.True(t, ok)
	_, ok = l.Match(icmp)
	assert.False(t, ok)
}

func TestNext(t *testing.T) {
	echo, err := probe.BuildICMPProbe(testLocal, testTarget)
	if err != nil {
		t.Fatal(err)
	}
	src := &fakeSource{
		frames: []frame{
			{data: echo, outgoing: true},
			{data: probe.BuildARPProbe(testLocal, testTarget), outgoing: true},
			{data: []byte{1, 2, 3}},
			{data: icmpFrame(t, testOther, layers.ICMPv4TypeEchoRequest, 1, 1)},
			{data: icmpFrame(t, testTarget, layers.ICMPv4TypeEchoReply, 1, 1)},
			{data: arpReply(t, testTarget, net.IPv4(172, 17, 0, 9))},
		},
		err: io.ErrUnexpectedEOF,
	}
	l := New(src)
	assert.Equal(t, StateListening, l.State())

	reply, err := l.Next(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, KindICMP, reply.Kind)
		assert.Equal(t, testTarget, reply.Source)
		assert.NotEmpty(t, reply.Frame)
		assert.False(t, reply.Time.IsZero())
	}
	assert.Equal(t, StateMatched, l.State())

	reply, err = l.Next(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, KindARP, reply.Kind)
	}

	// Read failure ends the loop
	_, err = l.Next(context.Background())
	assert.ErrorIs(t, err, errcode.IoFailure)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, StateListening, l.State())

	stats := l.Stats()
	assert.Equal(t, uint64(2), stats.RxPackets)
	assert.Equal(t, uint64(4), stats.RxSkipped)
}

func TestRun(t *testing.T) {
	var frames []frame
	for i := 0; i < 5; i++ {
		frames = append(frames, frame{data: icmpFrame(t, testTarget, layers.ICMPv4TypeEchoReply, 0, uint16(i))})
	}

	t.Run("StopByCallback", func(t *testing.T) {
		var seqs []uint16
		err := New(&fakeSource{frames: frames}).Run(context.Background(), func(r Reply) bool {
			seqs = append(seqs, r.Seq)
			return len(seqs) < 3
		})
		assert.NoError(t, err)
		assert.Equal(t, []uint16{0, 1, 2}, seqs)
	})

	t.Run("StopByContext", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		var count int
		err := New(&fakeSource{frames: frames}).Run(ctx, func(Reply) bool {
			count++
			return true
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 5, count)
	})
}

func TestReplyString(t *testing.T) {
	l := New(&fakeSource{})
	reply, ok := l.Match(arpReply(t, testTarget, net.IPv4(172, 17, 0, 9)))
	if assert.True(t, ok) {
		assert.Equal(t, "arp op 2 from 00:01:02:03:04:05: sender 00:01:02:03:04:05 (172.17.0.9)", reply.String())
	}

	reply, ok = l.Match(icmpFrame(t, testTarget, layers.ICMPv4TypeEchoReply, 1, 2))
	if assert.True(t, ok) {
		assert.Equal(t, "icmp type 0 code 0 from 00:01:02:03:04:05 (172.17.0.9), id 1, seq 2", reply.String())
	}
}
