package hypermph

import (
	"context"
	"path/filepath"
	"testing"
)

func benchmarkBuildN(b *testing.B, n, workers int) {
	rng := newTestRNG(b)
	keys := generateUint64Keys(rng, n)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		if _, err := BuildUint64(ctx, keys, WithWorkers(workers)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild1K(b *testing.B)           { benchmarkBuildN(b, 1000, 1) }
func BenchmarkBuild10K(b *testing.B)          { benchmarkBuildN(b, 10000, 1) }
func BenchmarkBuild100K(b *testing.B)         { benchmarkBuildN(b, 100000, 1) }
func BenchmarkBuild100KParallel(b *testing.B) { benchmarkBuildN(b, 100000, 8) }

func benchmarkLookupN(b *testing.B, n int) {
	rng := newTestRNG(b)
	keys := generateUint64Keys(rng, n)

	path := filepath.Join(b.TempDir(), "bench.mph")
	built, err := BuildUint64(context.Background(), keys)
	if err != nil {
		b.Fatal(err)
	}
	if err := built.WriteFile(path); err != nil {
		b.Fatal(err)
	}

	idx, err := Open(path)
	if err != nil {
		b.Fatal(err)
	}
	defer idx.Close()

	var x uint64
	b.ResetTimer()
	b.ReportAllocs()
	for i := range b.N {
		x ^= idx.LookupUint64(keys[i%n])
	}
	_ = x
}

func BenchmarkLookup1K(b *testing.B)   { benchmarkLookupN(b, 1000) }
func BenchmarkLookup100K(b *testing.B) { benchmarkLookupN(b, 100000) }
func BenchmarkLookup1M(b *testing.B)   { benchmarkLookupN(b, 1000000) }

func BenchmarkLookupBytes(b *testing.B) {
	n := 100000
	rng := newTestRNG(b)
	keys := generateByteKeys(rng, n)
	idx, err := Build(context.Background(), keys)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := range b.N {
		_ = idx.LookupBytes(keys[i%n])
	}
}

func BenchmarkLookupParallel(b *testing.B) {
	n := 100000
	rng := newTestRNG(b)
	keys := generateUint64Keys(rng, n)
	idx, err := BuildUint64(context.Background(), keys)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = idx.LookupUint64(keys[i%n])
			i++
		}
	})
}

func BenchmarkLoadBytes(b *testing.B) {
	rng := newTestRNG(b)
	idx, err := BuildUint64(context.Background(), generateUint64Keys(rng, 100000))
	if err != nil {
		b.Fatal(err)
	}
	data := encode(b, idx)

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := LoadBytes(data); err != nil {
			b.Fatal(err)
		}
	}
}
