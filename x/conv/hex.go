package conv

const hexd = "0123456789ABCDEF"

// AddrHex renders a 7-bit bus address as "0x29" without fmt.
func AddrHex(addr uint16) string {
	b := [4]byte{'0', 'x', hexd[(addr>>4)&0xF], hexd[addr&0xF]}
	return string(b[:])
}

// BytesHex renders b as contiguous uppercase hex, two digits per byte.
func BytesHex(b []byte) string {
	out := make([]byte, 0, len(b)*2)
	for _, v := range b {
		out = append(out, hexd[v>>4], hexd[v&0xF])
	}
	return string(out)
}
