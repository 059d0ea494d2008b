package files

// QuotaBytes converts a plan's storage allowance in gigabytes to bytes.
// Zero or negative allowances mean unlimited.
func QuotaBytes(maxGB float64) int64 {
	if maxGB <= 0 {
		return 0
	}
	return int64(maxGB * 1024 * 1024 * 1024)
}

// WithinQuota reports whether adding a file of the given size keeps the
// organization under its storage allowance.
func WithinQuota(usedBytes, addBytes int64, maxGB float64) bool {
	quota := QuotaBytes(maxGB)
	if quota == 0 {
		return true
	}
	return usedBytes+addBytes <= quota
}
