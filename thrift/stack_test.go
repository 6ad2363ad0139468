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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackBufPushPop(t *testing.T) {
	s := NewStackBuf()
	s.reset(STRUCT)
	require.False(t, s.done())
	require.Equal(t, STRUCT, s.top().T)

	require.NoError(t, s.push(I32))
	require.Equal(t, I32, s.top().T)

	popped := s.popOrDec()
	require.True(t, popped)
	require.Equal(t, STRUCT, s.top().T)

	popped = s.popOrDec()
	require.True(t, popped)
	require.True(t, s.done())
}

func TestStackBufDecrementsBeforePopping(t *testing.T) {
	s := NewStackBuf()
	s.reset(I32)
	s.top().N = 2

	require.False(t, s.popOrDec())
	require.Equal(t, uint64(1), s.top().N)

	require.False(t, s.popOrDec())
	require.Equal(t, uint64(0), s.top().N)

	require.True(t, s.popOrDec())
	require.True(t, s.done())
}

func TestStackBufOverflow(t *testing.T) {
	s := NewStackBuf()
	s.reset(STRUCT)
	for i := 0; i < MaxSkipDepth-1; i++ {
		require.NoError(t, s.push(STRUCT))
	}
	require.ErrorIs(t, s.push(STRUCT), ErrStackOverflow)
}
