// Package dict provides the recursively-typed key-value container that backs
// every plot message.
//
// # Overview
//
// A [Dictionary] maps string keys to [Value]s. A Value is a tagged union that
// holds exactly one of:
//
//   - nothing (unset)
//   - a bool, an int, a double or a string
//   - a homogeneous series of doubles, ints or strings
//   - an any-series: interleaved strings, doubles and ints with explicit
//     [Null] gap markers
//   - a nested Dictionary
//
// The variant set mirrors the DictItemVal oneof of the wire schema
// one-to-one, see package wire.
//
// # Ownership
//
// A Dictionary owns its backing store exclusively. Operations that hand a
// Dictionary to another owner consume it: [Dictionary.Add] with a
// *Dictionary value, [Dictionary.Set], [Dictionary.Update], [Dictionary.Take]
// and [DictValue] all leave the source empty rather than sharing storage.
// [Dictionary.Clone] produces a fully independent deep copy.
//
//	inner := dict.New("size", 10)
//	outer := dict.New("marker", inner)
//	fmt.Println(inner.Len()) // 0, moved into outer
//
// # Nested Mutation
//
// [Dictionary.At] returns a [Proxy] bound to a key. Chained At calls create
// intermediate dictionaries on demand:
//
//	d := dict.New()
//	d.At("marker").At("line").At("width").Set(2)
//	// d == Dict(marker:Dict(line:Dict(width:2)))
//
// # Concurrency
//
// Dictionary is not safe for concurrent use without external synchronization.
package dict
