package files

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuotaBytes(t *testing.T) {
	require.Equal(t, int64(1073741824), QuotaBytes(1))
	require.Equal(t, int64(10737418240), QuotaBytes(10))
	require.Equal(t, int64(536870912), QuotaBytes(0.5))
	require.Zero(t, QuotaBytes(0))
	require.Zero(t, QuotaBytes(-1))
}

func TestWithinQuota(t *testing.T) {
	gb := int64(1024 * 1024 * 1024)

	require.True(t, WithinQuota(0, gb, 10))
	require.True(t, WithinQuota(9*gb, gb, 10))
	require.False(t, WithinQuota(10*gb, 1, 10))
	require.False(t, WithinQuota(9*gb, gb+1, 10))

	// zero allowance means unlimited
	require.True(t, WithinQuota(100*gb, gb, 0))
}
