package whalecs

import "math/bits"

const bitsPerWord = 64

// Bitset is a resizable bit vector. It backs the per-entity component and tag
// signatures (see Pattern) as well as the world's active-entity set. All
// comparisons mask the unused high bits of the final word, so two sets with
// differing trailing padding still compare correctly.
type Bitset struct {
	words []uint64
	nbits int
}

// Pattern is a Bitset sized to the world's component bound, one bit per
// registered component or tag type id.
type Pattern = Bitset

// NewBitset returns a bitset holding size bits, all zero.
func NewBitset(size int) Bitset {
	return Bitset{
		words: make([]uint64, wordCount(size)),
		nbits: size,
	}
}

func wordCount(nbits int) int {
	return (nbits + bitsPerWord - 1) / bitsPerWord
}

// maskedWord returns word i with any bits beyond the set's length cleared.
// Out-of-range words read as zero, which makes the algebra below correct for
// operands of differing sizes.
func (b Bitset) maskedWord(i int) uint64 {
	if i >= len(b.words) {
		return 0
	}
	w := b.words[i]
	if i == len(b.words)-1 {
		if r := b.nbits % bitsPerWord; r != 0 {
			w &= (uint64(1) << uint(r)) - 1
		}
	}
	return w
}

// Len returns the number of bits the set holds.
func (b Bitset) Len() int {
	return b.nbits
}

// Resize grows or shrinks the set to hold size bits. Newly added bits are zero.
func (b *Bitset) Resize(size int) {
	nw := wordCount(size)
	if nw <= cap(b.words) {
		old := len(b.words)
		b.words = b.words[:nw]
		for i := old; i < nw; i++ {
			b.words[i] = 0
		}
	} else {
		words := make([]uint64, nw)
		copy(words, b.words)
		b.words = words
	}
	b.nbits = size
}

// Set sets the bit at pos to 1.
func (b *Bitset) Set(pos int) {
	b.words[pos/bitsPerWord] |= uint64(1) << uint(pos%bitsPerWord)
}

// Reset sets the bit at pos to 0.
func (b *Bitset) Reset(pos int) {
	b.words[pos/bitsPerWord] &^= uint64(1) << uint(pos%bitsPerWord)
}

// SetTo sets the bit at pos to the given value.
func (b *Bitset) SetTo(pos int, value bool) {
	if value {
		b.Set(pos)
	} else {
		b.Reset(pos)
	}
}

// Test reports whether the bit at pos is set.
func (b Bitset) Test(pos int) bool {
	return b.words[pos/bitsPerWord]&(uint64(1)<<uint(pos%bitsPerWord)) != 0
}

// Clear resets every bit to 0.
func (b *Bitset) Clear() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// Count returns the number of set bits.
func (b Bitset) Count() int {
	n := 0
	for i := range b.words {
		n += bits.OnesCount64(b.maskedWord(i))
	}
	return n
}

// None reports whether no bit is set.
func (b Bitset) None() bool {
	for i := range b.words {
		if b.maskedWord(i) != 0 {
			return false
		}
	}
	return true
}

// Contains reports whether every bit set in other is also set in b (b ⊇ other).
func (b Bitset) Contains(other Bitset) bool {
	for i := 0; i < len(other.words); i++ {
		ow := other.maskedWord(i)
		if b.maskedWord(i)&ow != ow {
			return false
		}
	}
	return true
}

// ContainsAny reports whether b and other share at least one set bit.
func (b Bitset) ContainsAny(other Bitset) bool {
	for i := 0; i < len(other.words); i++ {
		if b.maskedWord(i)&other.maskedWord(i) != 0 {
			return true
		}
	}
	return false
}

// ContainsNone reports whether b and other are disjoint (b ∩ other = ∅).
func (b Bitset) ContainsNone(other Bitset) bool {
	return !b.ContainsAny(other)
}

// FirstMatch returns the position of the lowest bit set in both b and other,
// or -1 if the sets are disjoint.
func (b Bitset) FirstMatch(other Bitset) int {
	n := len(b.words)
	if len(other.words) < n {
		n = len(other.words)
	}
	for i := 0; i < n; i++ {
		if common := b.maskedWord(i) & other.maskedWord(i); common != 0 {
			return i*bitsPerWord + bits.TrailingZeros64(common)
		}
	}
	return -1
}

// Equals reports whether both sets have the same length and the same bits.
func (b Bitset) Equals(other Bitset) bool {
	if b.nbits != other.nbits {
		return false
	}
	for i := range b.words {
		if b.maskedWord(i) != other.maskedWord(i) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the set.
func (b Bitset) Clone() Bitset {
	c := Bitset{
		words: make([]uint64, len(b.words)),
		nbits: b.nbits,
	}
	copy(c.words, b.words)
	return c
}

// And returns the bitwise intersection of b and other.
func (b Bitset) And(other Bitset) Bitset {
	return b.combine(other, func(x, y uint64) uint64 { return x & y })
}

// Or returns the bitwise union of b and other.
func (b Bitset) Or(other Bitset) Bitset {
	return b.combine(other, func(x, y uint64) uint64 { return x | y })
}

// Xor returns the bitwise symmetric difference of b and other.
func (b Bitset) Xor(other Bitset) Bitset {
	return b.combine(other, func(x, y uint64) uint64 { return x ^ y })
}

// Not returns a copy of b with every bit flipped.
func (b Bitset) Not() Bitset {
	c := NewBitset(b.nbits)
	for i := range c.words {
		c.words[i] = ^b.maskedWord(i)
	}
	return c
}

// combine builds a result sized to the larger operand.
func (b Bitset) combine(other Bitset, op func(x, y uint64) uint64) Bitset {
	size := b.nbits
	if other.nbits > size {
		size = other.nbits
	}
	c := NewBitset(size)
	for i := range c.words {
		c.words[i] = op(b.maskedWord(i), other.maskedWord(i))
	}
	return c
}
