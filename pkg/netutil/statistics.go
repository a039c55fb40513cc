package netutil

import "time"

type Statistics struct {
	RxPackets uint64    `json:"rx_packets"`
	TxPackets uint64    `json:"tx_packets"`
	RxBytes   uint64    `json:"rx_bytes"`
	TxBytes   uint64    `json:"tx_bytes"`
	RxIOs     uint64    `json:"rx_ios"` // recvfrom
	TxIOs     uint64    `json:"tx_ios"` // sendto
	RxErrors  uint64    `json:"rx_errors"`
	TxErrors  uint64    `json:"tx_errors"`
	RxSkipped uint64    `json:"rx_skipped"` // frames read but not reported
	Timestamp time.Time `json:"timestamp"`  // Get statistics time
}

func (s Statistics) Fields() map[string]any {
	return map[string]any{
		"rx_packets": s.RxPackets,
		"tx_packets": s.TxPackets,
		"rx_bytes":   s.RxBytes,
		"tx_bytes":   s.TxBytes,
		"rx_errors":  s.RxErrors,
		"tx_errors":  s.TxErrors,
		"rx_skipped": s.RxSkipped,
	}
}
