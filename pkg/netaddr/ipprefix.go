package netaddr

import (
	"fmt"
	"net"
	"strings"
)

// IPv4Prefix interface address with its prefix length, host bits are kept
type IPv4Prefix struct {
	Addr      IPv4Addr `json:"addr,omitempty"`
	PrefixLen uint8    `json:"prefix_len,omitempty"`
}

func (p IPv4Prefix) mask() IPv4Addr {
	if p.PrefixLen == 0 {
		return 0
	}
	return IPv4Addr(0xffffffff << (32 - uint32(p.PrefixLen)))
}

// Broadcast is the directed broadcast address of the subnet.
func (p IPv4Prefix) Broadcast() IPv4Addr {
	return p.Addr | ^p.mask()
}

func (p IPv4Prefix) Type() string {
	return "IPv4Prefix"
}

func (p *IPv4Prefix) Set(s string) error {
	sp, err := NewIPv4PrefixFromStr(s)
	if err != nil {
		return err
	}
	*p = sp
	return nil
}

func (p IPv4Prefix) String() string {
	return fmt.Sprintf("%s/%d", p.Addr, p.PrefixLen)
}

func NewIPv4PrefixFromIPNet(ipnet *net.IPNet) (IPv4Prefix, error) {
	if ipnet == nil || ipnet.IP.To4() == nil {
		return IPv4Prefix{}, fmt.Errorf("invalid ipv4 network: %v", ipnet)
	}
	ones, bits := ipnet.Mask.Size()
	if bits != 32 && bits != 128 {
		return IPv4Prefix{}, fmt.Errorf("invalid ipv4 mask: %s", ipnet.Mask)
	}
	if bits == 128 {
		ones -= 96
	}
	return IPv4Prefix{Addr: NewIPv4AddrFromIP(ipnet.IP), PrefixLen: uint8(ones)}, nil
}

func NewIPv4PrefixFromCIDRStr(cidr string) (IPv4Prefix, error) {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return IPv4Prefix{}, err
	}
	ipnet.IP = ip
	return NewIPv4PrefixFromIPNet(ipnet)
}

func NewIPv4PrefixFromIP(p net.IP) (IPv4Prefix, error) {
	if p.To4() == nil {
		return IPv4Prefix{}, fmt.Errorf("invalid ipv4: %s", p)
	}
	return IPv4Prefix{Addr: NewIPv4AddrFromIP(p), PrefixLen: 32}, nil
}

func NewIPv4PrefixFromIPStr(ipStr string) (IPv4Prefix, error) {
	p := net.ParseIP(ipStr)
	if p == nil {
		return IPv4Prefix{}, fmt.Errorf("invalid ip: %s", ipStr)
	}
	return NewIPv4PrefixFromIP(p)
}

// NewIPv4PrefixFromStr support both ip/cidr
func NewIPv4PrefixFromStr(s string) (IPv4Prefix, error) {
	if strings.IndexByte(s, '/') == -1 {
		return NewIPv4PrefixFromIPStr(s)
	}
	return NewIPv4PrefixFromCIDRStr(s)
}
