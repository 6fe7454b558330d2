package utils

// ToStrings converts a slice of string-kinded values to plain strings.
func ToStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
