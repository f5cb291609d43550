package triklops

// IsDegenerate reports whether the smallest interior angle of t is below
// threshold degrees. A nil threshold disables the check.
func IsDegenerate(t Triangle, threshold *float64) bool {
	if threshold == nil {
		return false
	}
	return t.MinAngle() < *threshold
}
