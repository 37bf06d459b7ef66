/*
 * Copyright 2024 The RuleGo Authors.
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

// Package compress stores result tables as snappy-compressed snapshots of
// their deterministic binary encoding. Two runs that produced the same table
// produce byte-identical snapshots.
package compress

import (
	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/rulego/tableagg/types"
)

// Snapshot encodes t and compresses it
func Snapshot(t *types.Table) ([]byte, error) {
	if t == nil {
		return nil, types.InvalidArgumentf("table cannot be nil")
	}
	raw, err := t.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "encoding table")
	}
	return snappy.Encode(nil, raw), nil
}

// Decode returns the binary table encoding held by a snapshot
func Decode(snapshot []byte) ([]byte, error) {
	raw, err := snappy.Decode(nil, snapshot)
	if err != nil {
		return nil, &types.Error{Type: types.ErrorTypeInvalidArgument, Message: "corrupt snapshot", Cause: err}
	}
	return raw, nil
}

// Fingerprint hashes the binary encoding of t
func Fingerprint(t *types.Table) (uint64, error) {
	if t == nil {
		return 0, types.InvalidArgumentf("table cannot be nil")
	}
	raw, err := t.MarshalBinary()
	if err != nil {
		return 0, errors.Wrap(err, "encoding table")
	}
	return xxhash.Sum64(raw), nil
}

// SameSnapshot reports whether a snapshot holds the encoding of t
func SameSnapshot(snapshot []byte, t *types.Table) (bool, error) {
	raw, err := Decode(snapshot)
	if err != nil {
		return false, err
	}
	want, err := t.MarshalBinary()
	if err != nil {
		return false, err
	}
	return string(raw) == string(want), nil
}
