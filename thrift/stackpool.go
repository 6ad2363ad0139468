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

package thrift

import "sync"

// stackBufPool backs BinaryProtocol.Skip, which has no caller-supplied
// StackBuf of its own. A StackBuf is sized for MaxSkipDepth frames up
// front, so pooling avoids repeating that allocation on every call.
var stackBufPool = sync.Pool{
	New: func() interface{} { return NewStackBuf() },
}

func getPooledStackBuf() *StackBuf {
	return stackBufPool.Get().(*StackBuf)
}

func putPooledStackBuf(s *StackBuf) {
	stackBufPool.Put(s)
}
