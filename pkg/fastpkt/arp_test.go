package fastpkt

import (
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/zxhio/wolping/pkg/netaddr"
)

var (
	testSenderHw = netaddr.HwAddr{86, 102, 96, 15, 235, 58}
	testTargetHw = netaddr.HwAddr{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	testSenderIP = netaddr.IPv4Addr(0xac101702) // 172.16.23.2
)

func TestARPMessageMarshal(t *testing.T) {
	msg := NewARPRequest(testSenderHw, testSenderIP, testTargetHw, netaddr.IPv4Broadcast)
	data := make([]byte, SizeofARPEthIPv4)
	msg.MarshalTo(DataPtr[ARPEthIPv4](data, 0))
	assert.Len(t, data, SizeofARPEthIPv4)
	assert.Equal(t, []byte{0x00, 0x01, 0x08, 0x00, 0x06, 0x04, 0x00, 0x01}, data[:SizeofARP])

	p := gopacket.NewPacket(data, layers.LayerTypeARP, gopacket.Default)
	arp, ok := p.Layer(layers.LayerTypeARP).(*layers.ARP)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, layers.LinkTypeEthernet, arp.AddrType)
	assert.Equal(t, layers.EthernetTypeIPv4, arp.Protocol)
	assert.Equal(t, uint16(layers.ARPRequest), arp.Operation)
	assert.Equal(t, testSenderHw[:], arp.SourceHwAddress)
	assert.Equal(t, []byte{172, 16, 23, 2}, arp.SourceProtAddress)
	assert.Equal(t, testTargetHw[:], arp.DstHwAddress)
	assert.Equal(t, []byte{255, 255, 255, 255}, arp.DstProtAddress)

	// Exact inverse
	got, err := ParseARPMessage(data)
	if assert.NoError(t, err) {
		assert.Equal(t, msg, got)
	}
}

func TestParseARPMessageInvalid(t *testing.T) {
	msg := NewARPRequest(testSenderHw, testSenderIP, testTargetHw, netaddr.IPv4Broadcast)
	data := make([]byte, SizeofARPEthIPv4)
	msg.MarshalTo(DataPtr[ARPEthIPv4](data, 0))

	_, err := ParseARPMessage(data[:SizeofARP-1])
	assert.ErrorIs(t, err, ErrPacketTooShort)

	_, err = ParseARPMessage(data[:SizeofARPEthIPv4-1])
	assert.ErrorIs(t, err, ErrPacketTooShort)

	bad := append([]byte(nil), data...)
	bad[4] = 8 // hardware address length
	_, err = ParseARPMessage(bad)
	assert.ErrorIs(t, err, ErrPacketMalformedARP)

	bad = append([]byte(nil), data...)
	bad[5] = 16 // protocol address length
	_, err = ParseARPMessage(bad)
	assert.ErrorIs(t, err, ErrPacketMalformedARP)
}
