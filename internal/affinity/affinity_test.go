package affinity_test

import (
	"reflect"
	"testing"

	"github.com/neurotsdb/tsarc/internal/affinity"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		expr string
		numC int
		want affinity.Set
	}{
		{"all shorthand", "a", 8, affinity.Set{All: true}},
		{"empty defaults to all", "", 8, affinity.Set{All: true}},
		{"single CPU", "3", 8, affinity.Set{CPUs: []int{3}}},
		{"exclude one", "~3", 4, affinity.Set{CPUs: []int{0, 1, 2}}},
		{"below N", "<3", 8, affinity.Set{CPUs: []int{0, 1, 2}}},
		{"above N", ">5", 8, affinity.Set{CPUs: []int{6, 7}}},
		{"inclusive range", "2-4", 8, affinity.Set{CPUs: []int{2, 3, 4}}},
		{"excluded range", "~2-4", 6, affinity.Set{CPUs: []int{0, 1, 5}}},
		{"complement of below", "~<3", 6, affinity.Set{CPUs: []int{3, 4, 5}}},
		{"complement of above", "~>4", 6, affinity.Set{CPUs: []int{0, 1, 2, 3, 4}}},
		{"garbage falls back to all", "???", 8, affinity.Set{All: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := affinity.Parse(tc.expr, tc.numC)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Parse(%q, %d) = %+v, want %+v", tc.expr, tc.numC, got, tc.want)
			}
		})
	}
}

func TestSetSize(t *testing.T) {
	if got := (affinity.Set{All: true}).Size(8); got != 8 {
		t.Errorf("All.Size(8) = %d, want 8", got)
	}
	if got := (affinity.Set{CPUs: []int{1, 2, 3}}).Size(8); got != 3 {
		t.Errorf("CPUs.Size = %d, want 3", got)
	}
}
