package device

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	u "github.com/moratsam/opencl-temporal-denoise/util"
)

func TestDomainGlobal(t *testing.T) {
	tests := map[string]struct {
		dims                     int
		local, items, item_width []int
		want                     []int
	}{
		"four pixel items": {
			dims:       2,
			local:      []int{8, 32},
			items:      []int{100, 50},
			item_width: []int{4, 1},
			want:       []int{32, 64},
		},
		"one pixel items": {
			dims:       2,
			local:      []int{8, 32},
			items:      []int{100, 50},
			item_width: []int{1, 1},
			want:       []int{104, 64},
		},
		"exact fit": {
			dims:       1,
			local:      []int{256},
			items:      []int{4096},
			item_width: []int{4},
			want:       []int{1024},
		},
		"three dims": {
			dims:       3,
			local:      []int{4, 4, 2},
			items:      []int{5, 9, 3},
			item_width: []int{1, 2, 1},
			want:       []int{8, 8, 4},
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			global, err := NewDomain(test.dims, test.local, test.items, test.item_width).Global()
			require.NoError(t, err)
			require.Equal(t, test.want, global)
		})
	}
}

func TestDomainGlobalIsMultipleOfLocal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		dims := 1 + rng.Intn(3)
		local, items, item_width := make([]int, dims), make([]int, dims), make([]int, dims)
		for j := 0; j < dims; j++ {
			local[j] = 1 + rng.Intn(64)
			items[j] = 1 + rng.Intn(4096)
			item_width[j] = 1 + rng.Intn(8)
		}
		global, err := NewDomain(dims, local, items, item_width).Global()
		require.NoError(t, err)
		for j := 0; j < dims; j++ {
			require.Zero(t, global[j]%local[j])
			require.GreaterOrEqual(t, global[j]*item_width[j], items[j])
		}
	}
}

func TestDomainInvalid(t *testing.T) {
	tests := map[string]Domain{
		"no dims":    NewDomain(0, nil, nil, nil),
		"four dims":  NewDomain(4, []int{1, 1, 1}, []int{1, 1, 1}, []int{1, 1, 1}),
		"zero local": NewDomain(1, []int{0}, []int{16}, []int{1}),
		"zero items": NewDomain(1, []int{8}, []int{0}, []int{1}),
		"zero width": NewDomain(2, []int{8, 8}, []int{16, 16}, []int{1, 0}),
	}
	for name, d := range tests {
		t.Run(name, func(t *testing.T) {
			global, err := d.Global()
			require.Nil(t, global)
			require.True(t, u.IsKind(err, u.InvalidParameter))
		})
	}
}
