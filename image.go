package efm8

import "sort"

// Segment 连续地址区间 [Start, End)
type Segment struct {
	Start uint32
	End   uint32
}

func (s Segment) Len() int {
	return int(s.End - s.Start)
}

// Image 稀疏的 地址->字节 映射，编程时读取，读flash时填充
type Image struct {
	data map[uint32]byte
}

func NewImage() *Image {
	return &Image{data: make(map[uint32]byte)}
}

func (m *Image) Set(address uint32, value byte) {
	m.data[address] = value
}

func (m *Image) SetBytes(address uint32, data []byte) {
	for index, value := range data {
		m.data[address+uint32(index)] = value
	}
}

func (m *Image) Get(address uint32) (byte, bool) {
	value, ok := m.data[address]
	return value, ok
}

func (m *Image) Len() int {
	return len(m.data)
}

// Addresses 升序排列的全部地址
func (m *Image) Addresses() []uint32 {
	addresses := make([]uint32, 0, len(m.data))
	for address := range m.data {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })
	return addresses
}

// Segments 按地址升序的最大连续区间
func (m *Image) Segments() []Segment {
	var segments []Segment
	for _, address := range m.Addresses() {
		if n := len(segments); n > 0 && segments[n-1].End == address {
			segments[n-1].End++
			continue
		}
		segments = append(segments, Segment{Start: address, End: address + 1})
	}
	return segments
}

// Bytes 区间内的数据，区间必须来自 Segments
func (m *Image) Bytes(segment Segment) []byte {
	data := make([]byte, 0, segment.Len())
	for address := segment.Start; address < segment.End; address++ {
		data = append(data, m.data[address])
	}
	return data
}
