package mrz

var weights = [3]int{7, 3, 1}

// CheckDigit computes the ICAO 9303 check digit of field.
func CheckDigit(field string) byte {
	sum := 0
	for i := 0; i < len(field); i++ {
		sum += charValue(field[i]) * weights[i%3]
	}
	return byte('0' + sum%10)
}

// Verify reports whether check matches the check digit of field. A filler check
// character counts as zero.
func Verify(field string, check byte) bool {
	if check == '<' {
		check = '0'
	}
	return CheckDigit(field) == check
}

func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 0
	}
}
