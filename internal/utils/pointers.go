package utils

func StringPtr(s string) *string {
	return &s
}

func Float64Ptr(f float64) *float64 {
	return &f
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func PtrFloat64(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
