//go:build opencl

package opencl

import (
	"testing"

	"github.com/jgillich/go-opencl/cl"
	"github.com/stretchr/testify/require"
)

func TestRegion(t *testing.T) {
	require.Equal(t, [3]int{1, 3, 1}, region(1, 3))
	require.Equal(t, [3]int{1, 3, 1}, region(4, 3))
	require.Equal(t, [3]int{2, 3, 1}, region(5, 3))
}

func TestNeedsStaging(t *testing.T) {
	tests := map[string]struct {
		cols, rows, pitch, size int
		want                    bool
	}{
		"aligned":             {cols: 8, rows: 2, pitch: 8, size: 16},
		"padded pitch":        {cols: 6, rows: 2, pitch: 8, size: 16},
		"short pitch":         {cols: 6, rows: 2, pitch: 6, size: 12, want: true},
		"short last row":      {cols: 6, rows: 2, pitch: 8, size: 14, want: true},
		"wide pitch, exact":   {cols: 5, rows: 3, pitch: 16, size: 40},
		"wide pitch, trimmed": {cols: 5, rows: 3, pitch: 16, size: 37, want: true},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, test.want, needsStaging(test.cols, test.rows, test.pitch, test.size))
		})
	}
}

func TestDeviceType(t *testing.T) {
	for name, want := range map[string]cl.DeviceType{"gpu": cl.DeviceTypeGPU, "CPU": cl.DeviceTypeCPU, "all": cl.DeviceTypeAll} {
		got, err := deviceType(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := deviceType("fpga")
	require.Error(t, err)
}

func TestCopyRows(t *testing.T) {
	src := []byte{1, 2, 3, 9, 4, 5, 6, 9}
	dst := make([]byte, 8)
	copyRows(dst, 4, src, 4, 3, 2)
	require.Equal(t, []byte{1, 2, 3, 0, 4, 5, 6, 0}, dst)
}
