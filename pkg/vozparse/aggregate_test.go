package vozparse

import (
	"math"
	"reflect"
	"testing"
)

func TestResolveGroup(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
		want   int64
	}{
		{"thousands then hundreds", []int64{2, 1000, 500}, 2500},
		{"bare thousand", []int64{1000, 500}, 1500},
		{"additive hundreds", []int64{100, 50}, 150},
		{"thousands hundreds tens", []int64{2, 1000, 500, 50}, 2550},
		{"millions", []int64{2, 1000000, 500, 1000}, 2500000},
		{"hundreds of thousands", []int64{200, 50, 1000}, 250000},
		{"repeated multipliers add", []int64{1000, 1000}, 2000},
		{"thousand after million", []int64{1000, 1000000}, 1001000},
		{"single unit", []int64{7}, 7},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveGroup(tt.values)
			if !ok {
				t.Fatalf("ResolveGroup(%v) overflowed", tt.values)
			}
			if got != tt.want {
				t.Errorf("ResolveGroup(%v) = %d, want %d", tt.values, got, tt.want)
			}
		})
	}
}

func TestResolveGroup_Overflow(t *testing.T) {
	cases := [][]int64{
		{math.MaxInt64, 1000},
		{math.MaxInt64, 1},
		{math.MaxInt64 / 1000, 1000, math.MaxInt64},
	}
	for _, values := range cases {
		if _, ok := ResolveGroup(values); ok {
			t.Errorf("ResolveGroup(%v) should overflow", values)
		}
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		input string
		want  [][]int64
	}{
		{"ocho cuarenta y dos mil", [][]int64{{8}, {42, 1000}}},
		{"tres dos mil quinientos cincuenta", [][]int64{{3}, {2, 1000, 500, 50}}},
		{"ciento cincuenta", [][]int64{{100, 50}}},
		{"mil quinientos", [][]int64{{1000, 500}}},
		{"dos tres", [][]int64{{2}, {3}}},
		{"diez doce", [][]int64{{10}, {12}}},
		{"veinte cinco", [][]int64{{20, 5}}},
		{"cinco 20000", [][]int64{{5}, {20000}}},
		{"5 mil", [][]int64{{5, 1000}}},
		{"5 mil 200", [][]int64{{5, 1000}, {200}}},
		{"20000 5", [][]int64{{20000}, {5}}},
		{"cajas dos a mil", [][]int64{{2}, {1000}}},
		{"cien cinco mil", [][]int64{{100}, {5, 1000}}},
		{"cien mil quinientos", [][]int64{{100, 1000, 500}}},
		{"ciento cinco mil", [][]int64{{100, 5, 1000}}},
		{"hola", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Segments(MergeCompounds(Tokenize(tt.input)))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segments(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	got, ok := Aggregate(MergeCompounds(Tokenize("ocho cuarenta y dos mil y tres")))
	if !ok {
		t.Fatal("unexpected overflow")
	}
	want := []int64{8, 42000, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate() = %v, want %v", got, want)
	}

	if _, ok := Aggregate(Tokenize("9223372036854775807 mil")); ok {
		t.Error("Aggregate should report overflow")
	}
}

func TestResolve_Limit(t *testing.T) {
	segments := Segments(Tokenize("dos a tres mil codigo 9223372036854775807 mil"))

	got, ok := resolve(segments, 2)
	if !ok {
		t.Fatal("numbers past the limit should not be resolved")
	}
	if want := []int64{2, 3000}; !reflect.DeepEqual(got, want) {
		t.Errorf("resolve(limit 2) = %v, want %v", got, want)
	}

	if _, ok := resolve(segments, 0); ok {
		t.Error("resolve without limit should report the overflow")
	}
}

func TestLowestPlace(t *testing.T) {
	tests := map[int64]int64{0: 0, -5: 0, 1: 1, 8: 1, 40: 10, 150: 10, 500: 100, 2000: 1000, 1200000: 100000, 1000000: 1000000}
	for n, want := range tests {
		if got := lowestPlace(n); got != want {
			t.Errorf("lowestPlace(%d) = %d, want %d", n, got, want)
		}
	}
}
