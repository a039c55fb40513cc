package fastpkt

// OnesComplementSum folds data, as a sequence of big endian 16-bit words, into
// a 16-bit ones-complement sum with end-around carry. An odd trailing byte is
// padded with zero.
func OnesComplementSum(data []byte, csum uint32) uint16 {
	// to handle odd lengths, we loop to length - 1, incrementing by 2, then
	// handle the last byte specifically by checking against the original
	// length.
	length := len(data) - 1
	for i := 0; i < length; i += 2 {
		csum += uint32(data[i]) << 8
		csum += uint32(data[i+1])
	}
	if len(data)%2 == 1 {
		csum += uint32(data[length]) << 8
	}
	for csum > 0xffff {
		csum = (csum >> 16) + (csum & 0xffff)
	}
	return uint16(csum)
}

// Checksum is the internet checksum (RFC 1071) in host byte order.
func Checksum(data []byte, csum uint32) uint16 {
	return ^OnesComplementSum(data, csum)
}
