package utils

// ClampOrDefault returns value when it lies in [min, max] and fallback otherwise.
func ClampOrDefault(value, min, max, fallback int) int {
	if value < min || value > max {
		return fallback
	}
	return value
}

// Clamp bounds value to [min, max].
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
