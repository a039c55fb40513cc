package netaddr

import (
	"net"

	"github.com/pkg/errors"
)

// HwAddr 48-bit Ethernet hardware address
type HwAddr [6]byte

var (
	HwAddrZero      = HwAddr{}
	HwAddrBroadcast = HwAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

func (HwAddr) Type() string {
	return "HwAddr"
}

func (addr HwAddr) String() string {
	return net.HardwareAddr(addr[:]).String()
}

func (addr *HwAddr) Set(s string) error {
	mac, err := net.ParseMAC(s)
	if err != nil {
		return err
	}
	if len(mac) != len(addr) {
		return errors.Errorf("invalid hardware address length %d: %s", len(mac), s)
	}
	*addr = HwAddr(mac)
	return nil
}

func (addr HwAddr) IsZero() bool { return addr == HwAddrZero }

func (addr HwAddr) ToHardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(addr[:])
}

func (addr HwAddr) MarshalJSON() ([]byte, error) {
	return marshal(addr)
}

func (addr *HwAddr) UnmarshalJSON(data []byte) error {
	return unmarshal(addr, data)
}

// NewHwAddr copies a 6-byte hardware address, other lengths (e.g. loopback
// or InfiniBand addresses) are rejected.
func NewHwAddr(hw net.HardwareAddr) (HwAddr, error) {
	if len(hw) != len(HwAddr{}) {
		return HwAddr{}, errors.Errorf("invalid hardware address length %d", len(hw))
	}
	return HwAddr(hw), nil
}
