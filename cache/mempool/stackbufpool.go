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

package mempool

import (
	"sync"

	"github.com/cloudwego/thriftskip/thrift"
)

// StackBufPool hands out *thrift.StackBuf values for callers that drive
// thrift.Skip themselves (e.g. one per worker goroutine in a pool) and
// want to amortize the MaxSkipDepth-sized allocation across requests
// instead of sizing their own pool.
type StackBufPool struct {
	pool sync.Pool
}

// NewStackBufPool returns a ready-to-use StackBufPool.
func NewStackBufPool() *StackBufPool {
	return &StackBufPool{
		pool: sync.Pool{New: func() interface{} { return thrift.NewStackBuf() }},
	}
}

// Get returns a StackBuf, allocating one only if the pool is empty.
func (p *StackBufPool) Get() *thrift.StackBuf {
	return p.pool.Get().(*thrift.StackBuf)
}

// Put returns s to the pool. The caller must not use s afterward.
func (p *StackBufPool) Put(s *thrift.StackBuf) {
	p.pool.Put(s)
}
