package netaddr

import (
	"encoding/json"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddrV4(t *testing.T) {
	testCases := []struct {
		addrV4  IPv4Addr
		addrStr string
		bytes   [4]byte
	}{
		{IPv4Addr(127<<24 + 1), "127.0.0.1", [4]byte{127, 0, 0, 1}},
		{IPv4Addr(192<<24 + 168<<16 + 10<<8 + 10), "192.168.10.10", [4]byte{192, 168, 10, 10}},
		{IPv4Broadcast, "255.255.255.255", [4]byte{255, 255, 255, 255}},
	}

	for _, tc := range testCases {
		t.Run(tc.addrStr, func(t *testing.T) {
			var v4 IPv4Addr
			err := v4.Set(tc.addrStr)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tc.addrV4, v4)
			assert.Equal(t, tc.addrStr, tc.addrV4.String())
			assert.Equal(t, net.ParseIP(tc.addrStr), tc.addrV4.ToIP())
			assert.Equal(t, tc.bytes, tc.addrV4.Bytes())
			assert.Equal(t, tc.addrV4, NewIPv4AddrFromBytes(tc.bytes))

			// Marshal/Unmarshal
			data, err := json.Marshal(tc.addrV4)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, fmt.Sprintf(`"%s"`, tc.addrStr), string(data))

			err = json.Unmarshal(data, &v4)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tc.addrV4, v4)
		})
	}
}

func TestAddrV4Invalid(t *testing.T) {
	var v4 IPv4Addr
	assert.Error(t, v4.Set("fe80::1"))
	assert.Error(t, v4.Set("300.1.1.1"))
}
