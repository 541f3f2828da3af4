package display

import "encoding/binary"

// RGB565 packs 8-bit channels into a 5:6:5 pixel.
func RGB565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return rr<<11 | gg<<5 | bb
}

// RGB888 expands a 5:6:5 pixel to full-range 8-bit channels.
func RGB888(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F
	return uint8(rr * 255 / 31), uint8(gg * 255 / 63), uint8(bb * 255 / 31)
}

// EncodeBigEndian writes px into dst as big-endian words, the order SPI
// panels shift them in. dst must hold 2*len(px) bytes; it returns the
// number of bytes written.
func EncodeBigEndian(px []uint16, dst []byte) int {
	n := len(px)
	if len(dst)/2 < n {
		n = len(dst) / 2
	}
	for i := 0; i < n; i++ {
		binary.BigEndian.PutUint16(dst[2*i:], px[i])
	}
	return 2 * n
}
