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

import "encoding/binary"

// Skip advances past exactly one complete value of type topType at the
// start of input, without materializing any decoded data, and reports the
// number of bytes consumed.
//
// It runs in bounded stack space: nested containers are tracked on stack
// (a caller-owned, fixed-capacity StackBuf) instead of via native
// recursion, so arbitrarily deep well-formed input cannot overflow the
// goroutine stack — only MaxSkipDepth frames of genuine nesting are ever
// held, and deeper input fails with ErrStackOverflow rather than crashing.
//
// Every type tag is validated against the wire-type table before it is
// trusted, so a single call to Skip either returns the exact byte length
// of one topType value or one of ErrBadTag, ErrShortBuffer,
// ErrStackOverflow; on any error the returned count is meaningless and
// the caller must not advance its own cursor.
//
// stack is reset on entry and may be reused across calls; concurrent
// calls must use disjoint StackBufs, as Skip mutates it and performs no
// internal synchronization.
func Skip(stack *StackBuf, input []byte, topType TType) (int, error) {
	if !wireRecognized[byte(topType)] {
		return 0, ErrBadTag
	}
	stack.reset(topType)

	consumed := 0
	for !stack.done() {
		buf := input[consumed:]
		f := stack.top()

		switch f.T {
		case BOOL, I08, DOUBLE, I16, I32, I64:
			w := int(wireFixedWidth[byte(f.T)])
			if len(buf) < w {
				return 0, ErrShortBuffer
			}
			stack.popOrDec()
			consumed += w

		case STRING:
			if len(buf) < 4 {
				return 0, ErrShortBuffer
			}
			n := uint64(binary.BigEndian.Uint32(buf))
			total := 4 + n
			if total > uint64(len(buf)) {
				return 0, ErrShortBuffer
			}
			stack.popOrDec()
			consumed += int(total)

		case STRUCT:
			if len(buf) < 1 {
				return 0, ErrShortBuffer
			}
			if buf[0] == 0 { // STOP
				stack.popOrDec()
				consumed++
				continue
			}
			if !wireRecognized[buf[0]] {
				return 0, ErrBadTag
			}
			if w := wireFixedWidth[buf[0]]; w > 0 {
				// fast path: tag(1) + field id(2) + fixed value, in one step
				need := int(w) + 3
				if len(buf) < need {
					return 0, ErrShortBuffer
				}
				consumed += need
				continue
			}
			// composite field: fields cannot have a zero-length body
			if len(buf) <= 3 {
				return 0, ErrShortBuffer
			}
			if err := stack.push(TType(buf[0])); err != nil {
				return 0, err
			}
			consumed += 3 // tag + 2-byte field id; value skipped via the pushed frame

		case MAP:
			if len(buf) < 6 {
				return 0, ErrShortBuffer
			}
			if !wireRecognized[buf[0]] || !wireRecognized[buf[1]] {
				return 0, ErrBadTag
			}
			kt, vt := TType(buf[0]), TType(buf[1])
			n := uint64(binary.BigEndian.Uint32(buf[2:6]))
			if n == 0 {
				stack.popOrDec()
				consumed += 6
				continue
			}
			wk, wv := uint64(wireFixedWidth[buf[0]]), uint64(wireFixedWidth[buf[1]])
			if wk > 0 && wv > 0 { // fast path: homogeneous fixed-width key and value
				total := 6 + n*(wk+wv)
				if total > uint64(len(buf)) {
					return 0, ErrShortBuffer
				}
				stack.popOrDec()
				consumed += int(total)
				continue
			}
			// not fast-pathable: rewrite the current frame into the map_pair
			// sentinel instead of pushing, so one frame covers the whole map
			f.T, f.K, f.V, f.N = mapPair, kt, vt, n*2-1
			consumed += 6

		case mapPair:
			kt, vt := f.K, f.V
			popped := stack.popOrDec()
			next := vt
			if !popped && f.N%2 == 0 {
				// parity of the post-decrement counter selects key vs value:
				// n was initialized to 2N-1, so an even counter after the
				// decrement (odd on entry) means a key comes next, and an
				// odd one (even on entry) means that key's value comes next.
				next = kt
			}
			if err := stack.push(next); err != nil {
				return 0, err
			}

		case SET, LIST:
			if len(buf) < 5 {
				return 0, ErrShortBuffer
			}
			if !wireRecognized[buf[0]] {
				return 0, ErrBadTag
			}
			et := TType(buf[0])
			n := uint64(binary.BigEndian.Uint32(buf[1:5]))
			if n == 0 {
				stack.popOrDec()
				consumed += 5
				continue
			}
			if w := uint64(wireFixedWidth[buf[0]]); w > 0 { // fast path
				total := 5 + n*w
				if total > uint64(len(buf)) {
					return 0, ErrShortBuffer
				}
				stack.popOrDec()
				consumed += int(total)
				continue
			}
			// reuse the current frame: "one list obligation" becomes "N
			// element obligations at this slot", keeping worst-case depth
			// equal to logical nesting depth rather than double it
			f.T, f.N = et, n-1
			consumed += 5

		default:
			return 0, ErrBadTag
		}
	}
	return consumed, nil
}
