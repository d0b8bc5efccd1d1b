// Package hypermph implements a chunked minimal perfect hash function (MPHF)
// over 3-hypergraphs.
//
// An Index maps every key of the set it was built from to a distinct integer
// in [0, NumKeys()) in constant time. Keys are hashed to a 128-bit digest;
// the top bits of the digest select a chunk, and three small bit-packed
// fields of that chunk, summed modulo the chunk's key count, give the key's
// index within the chunk. Keys outside the build set receive some index in
// range. The structure stores no keys and cannot tell members from
// non-members.
//
// # Basic Usage
//
// Building a structure:
//
//	idx, err := hypermph.BuildUint64(ctx, keys, hypermph.WithWorkers(8))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := idx.WriteFile("keys.mph"); err != nil {
//	    log.Fatal(err)
//	}
//
// Querying a structure:
//
//	idx, err := hypermph.Open("keys.mph")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer idx.Close()
//
//	fmt.Println(idx.LookupUint64(42))
//
// # Package Structure
//
//   - Public API: index.go (Open, Lookup*), load.go (Load, LoadBytes), builder.go (NewBuilder, Build)
//   - Configuration: builder_options.go (BuildOption), load.go (LoadOption)
//   - Serialization: header.go, index_writer.go (WriteTo, WriteFile)
//   - Hashing: algorithm.go (HashAlgorithm)
//   - Chunk routing: chunk.go
//   - Per-chunk function and solver: internal/hypergraph/
//   - Bit-packed storage: internal/bits/
//   - Platform: fallocate_*.go, madvise_*.go (OS-specific optimizations)
package hypermph
