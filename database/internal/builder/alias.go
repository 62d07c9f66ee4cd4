package builder

// aliasAllocator hands out A, B, ... Z, AA, AB, ... in registration order.
// It behaves like a bijective base-26 counter and never repeats a value.
type aliasAllocator struct {
	next int
}

// Next returns the next unused alias.
func (a *aliasAllocator) Next() string {
	n := a.next
	a.next++
	return aliasFor(n)
}

// aliasFor returns the alias for the zero-based position n.
func aliasFor(n int) string {
	var buf []byte
	for n >= 0 {
		buf = append(buf, byte('A'+n%26))
		n = n/26 - 1
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
