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

// wireRecognized and wireFixedWidth are indexed by the raw, unsigned tag
// byte as read off the wire — never by a TType value. TType is a signed
// int8 alias, so a tag byte >= 128 converts to a negative TType; indexing
// a [256]x array with that would panic rather than reporting BAD_TAG.
// Skip validates an externally-supplied byte before it is ever used as a
// TType, so its tables are keyed by byte to rule out the panic entirely.
var (
	wireRecognized [256]bool
	wireFixedWidth [256]uint8
)

func init() {
	for _, t := range []TType{BOOL, I08, DOUBLE, I16, I32, I64, STRING, STRUCT, MAP, SET, LIST} {
		wireRecognized[byte(t)] = true
	}
	wireFixedWidth[byte(BOOL)] = 1
	wireFixedWidth[byte(I08)] = 1
	wireFixedWidth[byte(DOUBLE)] = 8
	wireFixedWidth[byte(I16)] = 2
	wireFixedWidth[byte(I32)] = 4
	wireFixedWidth[byte(I64)] = 8
}
