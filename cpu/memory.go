package cpu

const (
	DATA_SIZE = 10 // Number of data memory cells.
)

// Memory is the data store: a fixed array of signed machine words.
type Memory [DATA_SIZE]int32

// Load returns the value at a data address.
func (mem *Memory) Load(addr int) (value int32, err error) {
	if addr < 0 || addr >= len(mem) {
		err = ErrDataAddress(addr)
		return
	}

	value = mem[addr]
	return
}

// Store sets the value at a data address.
func (mem *Memory) Store(addr int, value int32) (err error) {
	if addr < 0 || addr >= len(mem) {
		err = ErrDataAddress(addr)
		return
	}

	mem[addr] = value
	return
}

// Reset zeros all cells.
func (mem *Memory) Reset() {
	clear(mem[:])
}

// Cells returns the memory contents as a slice.
func (mem *Memory) Cells() []int32 {
	return mem[:]
}
