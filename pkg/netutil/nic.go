package netutil

import (
	"os"
	"path"
)

const sysNetPath = "/sys/class/net"

// IsPhyNic reports whether the interface is backed by a device, as opposed to
// a bridge, veth or other virtual link.
func IsPhyNic(nic string) bool {
	_, err := os.Stat(path.Join(sysNetPath, nic, "device"))
	return err == nil
}

// IsWireless reports whether the interface is a wireless device. Wake-on-LAN
// is rarely honoured over wireless links.
func IsWireless(nic string) bool {
	_, err := os.Stat(path.Join(sysNetPath, nic, "wireless"))
	return err == nil
}
