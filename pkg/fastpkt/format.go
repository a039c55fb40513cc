package fastpkt

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

type formatOpts struct {
	showEthernet bool
}

type FormatOpt func(*formatOpts)

func WithFormatEthernet() FormatOpt {
	return func(o *formatOpts) { o.showEthernet = true }
}

type FormatDelimiter string

const (
	FormatDelimiterNone  FormatDelimiter = ""
	FormatDelimiterSpace FormatDelimiter = " "
	FormatDelimiterComma FormatDelimiter = ", "
	FormatDelimiterColon FormatDelimiter = ": "
)

type LayerFormatter interface {
	LayerType() gopacket.LayerType
	Format(layer gopacket.Layer, opts ...FormatOpt) (string, FormatDelimiter)
}

var formatters map[gopacket.LayerType]LayerFormatter

func init() {
	formatters = make(map[gopacket.LayerType]LayerFormatter)

	Register(LayerFormatterEthernet{})
	Register(LayerFormatterVLAN{})
	Register(LayerFormatterARP{})
	Register(LayerFormatterIPv4{})
	Register(LayerFormatterICMPv4{})
}

func Register(layer LayerFormatter) {
	formatters[layer.LayerType()] = layer
}

func GetLayerFormatter(layerType gopacket.LayerType) (LayerFormatter, bool) {
	formatter, ok := formatters[layerType]
	return formatter, ok
}

// 02:42:6d:09:05:c4 > 02:42:ac:11:00:0a, ethertype IPv4 (0x0800), length 98:
type LayerFormatterEthernet struct{}

func (LayerFormatterEthernet) LayerType() gopacket.LayerType { return layers.LayerTypeEthernet }

func (LayerFormatterEthernet) Format(layer gopacket.Layer, opts ...FormatOpt) (string, FormatDelimiter) {
	var o formatOpts
	for _, opt := range opts {
		opt(&o)
	}

	eth := layer.(*layers.Ethernet)

	if o.showEthernet {
		return fmt.Sprintf("%s > %s, ethertype %s (0x%04x), length %d",
			eth.SrcMAC, eth.DstMAC, eth.EthernetType, int(eth.EthernetType), len(eth.Contents)+len(eth.Payload)), FormatDelimiterColon
	}

	if eth.EthernetType == layers.EthernetTypeIPv4 || eth.EthernetType == layers.EthernetTypeARP {
		return eth.EthernetType.String(), FormatDelimiterSpace
	}

	// not show anything
	return "", FormatDelimiterNone
}

// vlan 32, p 0, ethertype IPv4 (0x0800)
type LayerFormatterVLAN struct{}

func (LayerFormatterVLAN) LayerType() gopacket.LayerType { return layers.LayerTypeDot1Q }

func (LayerFormatterVLAN) Format(layer gopacket.Layer, opts ...FormatOpt) (string, FormatDelimiter) {
	var o formatOpts
	for _, opt := range opts {
		opt(&o)
	}

	vlan := layer.(*layers.Dot1Q)
	if o.showEthernet {
		return fmt.Sprintf("vlan %d, p %d, ethertype %s (0x%04x)",
			vlan.VLANIdentifier, vlan.Priority, vlan.Type, int(vlan.Type)), FormatDelimiterComma
	}
	return vlan.Type.String(), FormatDelimiterSpace
}

// Request who-has 255.255.255.255 tell 172.17.0.10, length 28
// Reply 172.17.0.1 is-at 02:42:6d:09:05:c4, length 28
type LayerFormatterARP struct{}

func (LayerFormatterARP) LayerType() gopacket.LayerType { return layers.LayerTypeARP }

func (LayerFormatterARP) Format(layer gopacket.Layer, _ ...FormatOpt) (string, FormatDelimiter) {
	arp := layer.(*layers.ARP)
	var s string
	switch arp.Operation {
	case layers.ARPRequest:
		s = fmt.Sprintf("Request who-has %s tell %s, length %d",
			net.IP(arp.DstProtAddress), net.IP(arp.SourceProtAddress), len(arp.Payload)+len(arp.Contents))
	case layers.ARPReply:
		s = fmt.Sprintf("Reply %s is-at %s, length %d",
			net.IP(arp.SourceProtAddress), net.HardwareAddr(arp.SourceHwAddress), len(arp.Payload)+len(arp.Contents))
	default:
		s = fmt.Sprintf("unknown arp operation %d", arp.Operation)
	}
	return s, FormatDelimiterNone
}

// 172.17.0.1 > 172.17.0.10
type LayerFormatterIPv4 struct{}

func (LayerFormatterIPv4) LayerType() gopacket.LayerType { return layers.LayerTypeIPv4 }

func (LayerFormatterIPv4) Format(layer gopacket.Layer, _ ...FormatOpt) (string, FormatDelimiter) {
	ipv4 := layer.(*layers.IPv4)
	return fmt.Sprintf("%s > %s", ipv4.SrcIP, ipv4.DstIP), FormatDelimiterColon
}

// ICMP echo request, id 62002, seq 3, length 64
// ICMP echo reply, id 62002, seq 3, length 64
type LayerFormatterICMPv4 struct{}

func (LayerFormatterICMPv4) LayerType() gopacket.LayerType { return layers.LayerTypeICMPv4 }

func (LayerFormatterICMPv4) Format(layer gopacket.Layer, _ ...FormatOpt) (string, FormatDelimiter) {
	icmp := layer.(*layers.ICMPv4)

	b := strings.Builder{}
	b.WriteString("ICMP ")

	switch icmp.TypeCode.Type() {
	case layers.ICMPv4TypeEchoRequest:
		b.WriteString(fmt.Sprintf("echo request, id %d, seq %d", icmp.Id, icmp.Seq))
	case layers.ICMPv4TypeEchoReply:
		b.WriteString(fmt.Sprintf("echo reply, id %d, seq %d", icmp.Id, icmp.Seq))
	default:
		b.WriteString(icmp.TypeCode.String())
	}
	b.WriteString(fmt.Sprintf(", length %d", len(icmp.Contents)+len(icmp.Payload)))

	return b.String(), FormatDelimiterNone
}

func FormatDumpTime(t time.Time) string {
	return t.Local().Format("15:04:05.000000")
}

// Format renders a frame on one line in the manner of tcpdump.
func Format(data []byte, opts ...FormatOpt) string {
	var (
		o     formatOpts
		b     strings.Builder
		delim FormatDelimiter
	)
	for _, opt := range opts {
		opt(&o)
	}

	p := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	for _, layer := range p.Layers() {
		var (
			s string
			d FormatDelimiter
		)

		f, ok := GetLayerFormatter(layer.LayerType())
		if ok {
			s, d = f.Format(layer, opts...)
		} else if layer.LayerType() != gopacket.LayerTypePayload {
			s = layer.LayerType().String()
			d = FormatDelimiterComma
		} else {
			continue
		}

		b.WriteString(string(delim))
		b.WriteString(s)
		delim = d
	}
	return b.String()
}
