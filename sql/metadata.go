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

// MdId identifies a metadata object (a relation, an index, a statistics
// record) inside a metadata provider.
type MdId uint64

// Metadata is an opaque catalog object. The core passes metadata through to
// operators unchanged; only the operator catalog knows the concrete types.
type Metadata interface {
	MdId() MdId
}

// MdProvider retrieves metadata objects by id. Providers may be backed by a
// remote catalog; the accessor below caches their answers.
type MdProvider interface {
	RetrieveMetadata(id MdId) (Metadata, error)
}

// MdAccessor is the read-only metadata view handed to statistics derivation
// and rule transforms. It caches id lookups for as long as the accessor
// lives; the cache is not synchronized.
type MdAccessor struct {
	provider MdProvider
	cache    map[MdId]Metadata
}

// NewMdAccessor wraps a provider with a lookup cache.
func NewMdAccessor(provider MdProvider) *MdAccessor {
	return &MdAccessor{
		provider: provider,
		cache:    make(map[MdId]Metadata),
	}
}

// RetrieveMetadata returns the metadata object behind id, consulting the
// cache first.
func (a *MdAccessor) RetrieveMetadata(id MdId) (Metadata, error) {
	if md, ok := a.cache[id]; ok {
		return md, nil
	}
	md, err := a.provider.RetrieveMetadata(id)
	if err != nil {
		return nil, err
	}
	a.cache[id] = md
	return md, nil
}
