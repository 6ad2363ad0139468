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
	"errors"
	"io"
	"sync"

	"github.com/cloudwego/thriftskip/bufiox"
)

// skipDecoderInitialPeek is the first guess at how many bytes a value
// needs; it doubles on every ErrShortBuffer retry.
const skipDecoderInitialPeek = 4096

var poolSkipDecoder = sync.Pool{
	New: func() interface{} { return &SkipDecoder{stack: NewStackBuf()} },
}

// SkipDecoder scans values off an io.Reader using Skip, growing its peek
// window instead of surfacing ErrShortBuffer to its own caller: a value
// that straddles more than one read from the underlying io.Reader is
// transparent to Next, not an error condition.
type SkipDecoder struct {
	r     bufiox.Reader
	stack *StackBuf
}

// NewSkipDecoder returns a SkipDecoder reading from r. Call Release when
// done with it.
func NewSkipDecoder(r io.Reader) *SkipDecoder {
	p := poolSkipDecoder.Get().(*SkipDecoder)
	p.Reset(r)
	return p
}

// Reset rebinds the decoder to a new io.Reader, releasing any buffer
// held for the previous one.
func (p *SkipDecoder) Reset(r io.Reader) {
	if p.r != nil {
		p.r.Release(nil)
	}
	p.r = bufiox.NewDefaultReader(r)
}

// Release returns the decoder to its pool. The decoder must not be used
// afterward.
func (p *SkipDecoder) Release() {
	if p.r != nil {
		p.r.Release(nil)
		p.r = nil
	}
	poolSkipDecoder.Put(p)
}

// Next skips a value of type t and returns its bytes. The returned slice
// is only valid until the next call on this decoder.
func (p *SkipDecoder) Next(t TType) ([]byte, error) {
	for n := skipDecoderInitialPeek; ; n *= 2 {
		buf, peekErr := p.r.Peek(n)
		sz, err := Skip(p.stack, buf, t)
		switch {
		case err == nil:
			if skipErr := p.r.Skip(sz); skipErr != nil {
				return nil, skipErr
			}
			return buf[:sz], nil
		case errors.Is(err, ErrShortBuffer) && peekErr == nil:
			// buf was exactly n bytes and still not enough: the reader
			// may have more, grow the window and try again.
		case errors.Is(err, ErrShortBuffer):
			// peekErr != nil means buf is everything left in the stream;
			// a value that doesn't fit in it can never grow to fit.
			return nil, peekErr
		default:
			// ErrBadTag / ErrStackOverflow: no amount of buffering helps.
			return nil, err
		}
	}
}
