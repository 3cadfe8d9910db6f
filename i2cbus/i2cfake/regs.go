package i2cfake

import "sync"

// Regs is a register-file target with an auto-incrementing pointer. The
// first byte (two bytes when Wide) of every write selects the register;
// remaining bytes are stored from there on. Reads continue from the pointer.
type Regs struct {
	mu   sync.Mutex
	Wide bool

	mem map[uint16]byte
	ptr uint16

	// OnRead may override the value of a register as it is read.
	OnRead func(reg uint16) (byte, bool)
	// OnWrite observes every stored byte.
	OnWrite func(reg uint16, v byte)
}

func NewRegs() *Regs { return &Regs{mem: make(map[uint16]byte)} }

// NewWideRegs returns a register file with 16-bit register addresses.
func NewWideRegs() *Regs { return &Regs{Wide: true, mem: make(map[uint16]byte)} }

// Set stores vals starting at reg.
func (g *Regs) Set(reg uint16, vals ...byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, v := range vals {
		g.mem[reg+uint16(i)] = v
	}
}

// Get returns the stored byte at reg.
func (g *Regs) Get(reg uint16) byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mem[reg]
}

func (g *Regs) Tx(w, r []byte) error {
	g.mu.Lock()
	onRead, onWrite := g.OnRead, g.OnWrite
	var written [][2]uint16
	ptrLen := 1
	if g.Wide {
		ptrLen = 2
	}
	if len(w) >= ptrLen {
		if g.Wide {
			g.ptr = uint16(w[0])<<8 | uint16(w[1])
		} else {
			g.ptr = uint16(w[0])
		}
		for _, v := range w[ptrLen:] {
			g.mem[g.ptr] = v
			written = append(written, [2]uint16{g.ptr, uint16(v)})
			g.ptr++
		}
	}
	regs := make([]uint16, len(r))
	for i := range r {
		regs[i] = g.ptr
		r[i] = g.mem[g.ptr]
		g.ptr++
	}
	g.mu.Unlock()

	if onWrite != nil {
		for _, wv := range written {
			onWrite(wv[0], byte(wv[1]))
		}
	}
	if onRead != nil {
		for i, reg := range regs {
			if v, ok := onRead(reg); ok {
				r[i] = v
			}
		}
	}
	return nil
}
