// Copyright 2024 Soradb, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

import "strings"

// Property is one component of a physical property set, e.g. a sort order
// or a distribution. Components are enumerated by the operator catalog; the
// core only compares them and asks them for their enforcers.
type Property interface {
	// Satisfies reports whether this component, as delivered, satisfies the
	// required component. Implementations must check the dynamic type and
	// return false for foreign kinds.
	Satisfies(required Property) bool

	// Equal reports whether two components are identical.
	Equal(other Property) bool

	// Fingerprint returns a string that identifies the component for use in
	// best-plan table keys. Equal components have equal fingerprints.
	Fingerprint() string

	// EnforcerOperator returns the physical operator that imposes this
	// component on an arbitrary input, e.g. a sort. The property names its
	// own enforcer; the core never hardcodes operator types.
	EnforcerOperator() PhysicalOperator
}

// PhysicalProps is a set of property components required from or delivered
// by a subplan. The empty set requires nothing and is satisfied by every
// delivered set.
type PhysicalProps struct {
	props []Property
}

// NewPhysicalProps returns a property set over the given components.
func NewPhysicalProps(props ...Property) *PhysicalProps {
	return &PhysicalProps{props: props}
}

// EmptyProps returns the empty requirement.
func EmptyProps() *PhysicalProps {
	return &PhysicalProps{}
}

// Properties returns the component list.
func (p *PhysicalProps) Properties() []Property {
	if p == nil {
		return nil
	}
	return p.props
}

// IsEmpty reports whether the set has no components.
func (p *PhysicalProps) IsEmpty() bool {
	return p == nil || len(p.props) == 0
}

// Satisfies reports component-wise satisfaction: every required component
// must be satisfied by some delivered component. The receiver is the
// delivered set.
func (p *PhysicalProps) Satisfies(required *PhysicalProps) bool {
	if required.IsEmpty() {
		return true
	}
	for _, req := range required.props {
		satisfied := false
		for _, d := range p.Properties() {
			if d.Satisfies(req) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}

// Equal reports whether two property sets carry equal components in the
// same order.
func (p *PhysicalProps) Equal(other *PhysicalProps) bool {
	if len(p.Properties()) != len(other.Properties()) {
		return false
	}
	for i, c := range p.Properties() {
		if !c.Equal(other.props[i]) {
			return false
		}
	}
	return true
}

// Without returns the set with the given component removed. Removing a
// component the set does not carry returns an equal set.
func (p *PhysicalProps) Without(c Property) *PhysicalProps {
	out := make([]Property, 0, len(p.Properties()))
	for _, prop := range p.Properties() {
		if !prop.Equal(c) {
			out = append(out, prop)
		}
	}
	return &PhysicalProps{props: out}
}

// Fingerprint keys the best-plan table. The empty set's fingerprint is the
// empty string.
func (p *PhysicalProps) Fingerprint() string {
	if p.IsEmpty() {
		return ""
	}
	parts := make([]string, len(p.props))
	for i, c := range p.props {
		parts[i] = c.Fingerprint()
	}
	return strings.Join(parts, ";")
}

func (p *PhysicalProps) String() string {
	if p.IsEmpty() {
		return "{}"
	}
	return "{" + p.Fingerprint() + "}"
}
