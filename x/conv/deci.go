package conv

// Deci renders a tenths fixed-point value, 253 => "25.3", -5 => "-0.5",
// without fmt or strconv.
func Deci(v int32) string {
	var b [13]byte
	i := len(b)
	u := int64(v)
	neg := u < 0
	if neg {
		u = -u
	}
	i--
	b[i] = byte('0' + u%10)
	i--
	b[i] = '.'
	u /= 10
	for {
		i--
		b[i] = byte('0' + u%10)
		u /= 10
		if u == 0 {
			break
		}
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
