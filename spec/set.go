/*
 * Copyright 2025 The RuleGo Authors.
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

package spec

// AggregationSet is an ordered list of specs applied over one grouping
type AggregationSet struct {
	specs []AggregationSpec
}

func NewSet(specs ...AggregationSpec) *AggregationSet {
	s := make([]AggregationSpec, len(specs))
	copy(s, specs)
	return &AggregationSet{specs: s}
}

func (s *AggregationSet) Specs() []AggregationSpec {
	out := make([]AggregationSpec, len(s.specs))
	copy(out, s.specs)
	return out
}

func (s *AggregationSet) Len() int {
	return len(s.specs)
}

// OutputNames lists the output names of every spec in declaration order.
// Duplicates are kept; they are rejected when the set is applied.
func (s *AggregationSet) OutputNames() []string {
	var names []string
	for _, a := range s.specs {
		names = append(names, a.OutputNames()...)
	}
	return names
}
