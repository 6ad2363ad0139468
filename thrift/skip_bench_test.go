/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package thrift_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/thriftskip/cache/mempool"
	"github.com/cloudwego/thriftskip/concurrency/gopool"
	"github.com/cloudwego/thriftskip/thrift"
)

// skipBenchCorpus builds a handful of encoded values exercising fast and
// non-fast paths, the shape a concurrent fan-out benchmark wants to chew
// through repeatedly rather than re-encoding on every call.
func skipBenchCorpus() [][]byte {
	x := thrift.BinaryProtocol{}

	var msgs [][]byte

	b := x.AppendI64(nil, 42)
	msgs = append(msgs, b)

	b = x.AppendListBegin(nil, thrift.I64, 64)
	for i := 0; i < 64; i++ {
		b = x.AppendI64(b, int64(i))
	}
	msgs = append(msgs, b)

	b = x.AppendMapBegin(nil, thrift.I32, thrift.STRING, 8)
	for i := 0; i < 8; i++ {
		b = x.AppendI32(b, int32(i))
		b = x.AppendString(b, "value")
	}
	msgs = append(msgs, b)

	b = nil
	for i := 0; i < 4; i++ {
		b = x.AppendFieldBegin(b, thrift.I32, int16(i+1))
		b = x.AppendI32(b, int32(i))
	}
	b = x.AppendFieldStop(b)
	msgs = append(msgs, b)

	return msgs
}

// TestConcurrentSkipFanOut drives gopool workers over a shared message
// corpus, each worker pulling its own pooled StackBuf, demonstrating the
// concurrency contract: disjoint stacks, no shared mutable state beyond
// the corpus bytes themselves (read-only to Skip).
func TestConcurrentSkipFanOut(t *testing.T) {
	corpus := skipBenchCorpus()
	types := []thrift.TType{thrift.I64, thrift.LIST, thrift.MAP, thrift.STRUCT}

	pool := gopool.NewGoPool("skip-fanout-test", nil)
	stackPool := mempool.NewStackBufPool()

	const iterations = 2000
	var wg sync.WaitGroup
	var ok int64

	for i := 0; i < iterations; i++ {
		i := i
		wg.Add(1)
		pool.Go(func() {
			defer wg.Done()
			idx := i % len(corpus)
			s := stackPool.Get()
			defer stackPool.Put(s)

			n, err := thrift.Skip(s, corpus[idx], types[idx])
			if err == nil && n == len(corpus[idx]) {
				atomic.AddInt64(&ok, 1)
			}
		})
	}
	wg.Wait()

	require.Equal(t, int64(iterations), ok)
}

// BenchmarkConcurrentSkip fans skips of the same corpus out across a
// gopool-backed worker set, one pooled StackBuf borrowed per task, so b.N
// measures throughput under concurrent, disjoint-stack use rather than a
// single hot loop.
func BenchmarkConcurrentSkip(b *testing.B) {
	corpus := skipBenchCorpus()
	types := []thrift.TType{thrift.I64, thrift.LIST, thrift.MAP, thrift.STRUCT}

	pool := gopool.NewGoPool("skip-fanout-bench", nil)
	stackPool := mempool.NewStackBufPool()

	b.ResetTimer()

	var wg sync.WaitGroup
	wg.Add(b.N)
	for i := 0; i < b.N; i++ {
		i := i
		pool.Go(func() {
			defer wg.Done()
			idx := i % len(corpus)
			s := stackPool.Get()
			defer stackPool.Put(s)
			_, _ = thrift.Skip(s, corpus[idx], types[idx])
		})
	}
	wg.Wait()
}
