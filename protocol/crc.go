package protocol

const (
	crc16Polynomial = 0x1021
	crc16HighBit    = 0x8000
)

// CRC16 CRC-16/XMODEM: 多项式0x1021，初值0，不反转，无结果异或
func CRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&crc16HighBit != 0 {
				crc = crc<<1 ^ crc16Polynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
