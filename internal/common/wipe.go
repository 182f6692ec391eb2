package common

// WipeByteArray zeroes b in place. Use it on passwords and derived keys once
// they are no longer needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
