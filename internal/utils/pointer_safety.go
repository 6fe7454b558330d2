package utils

// Value dereferences v, returning the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// ValueOr dereferences v, returning fallback for nil.
func ValueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// NonEmptyPtr returns a pointer to s, or nil when s is empty.
func NonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
