/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package component

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// MimeType identifies component payloads in drag-and-drop data.
const MimeType = "application/x-inkboard-component+json"

// ErrInvalidPayload is returned for payloads that are not valid component JSON.
var ErrInvalidPayload = errors.New("invalid component payload")

// Payload is the serialized form of a dropped component.
type Payload struct {
	Type   string  `json:"type"`
	Name   string  `json:"name,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Root   *Node   `json:"root"`
}

const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["type", "root"],
  "properties": {
    "type": {"const": "component"},
    "name": {"type": "string"},
    "width": {"type": "number", "minimum": 0},
    "height": {"type": "number", "minimum": 0},
    "root": {"$ref": "#/definitions/node"}
  },
  "definitions": {
    "node": {
      "type": "object",
      "required": ["kind"],
      "properties": {
        "id": {"type": "string"},
        "kind": {"enum": ["container", "content", "input", "nav", "feedback", "data"]},
        "type": {"type": "string"},
        "label": {"type": "string"},
        "props": {"type": "object", "additionalProperties": {"type": "string"}},
        "children": {"type": "array", "items": {"$ref": "#/definitions/node"}}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(payloadSchema)

// ParsePayload validates data against the component schema and decodes it.
// Nodes without an id get a fresh one.
func ParsePayload(data []byte) (Payload, error) {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Payload{}, fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	p.Root.Walk(func(n *Node, _ int) bool {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		return true
	})
	return p, nil
}

// Marshal encodes p as payload JSON.
func (p Payload) Marshal() ([]byte, error) {
	if p.Type == "" {
		p.Type = "component"
	}
	return json.Marshal(p)
}

// LooksLikePayload is a cheap pre-check used to route drops.
func LooksLikePayload(data []byte) bool {
	s := strings.TrimSpace(string(data))
	return strings.HasPrefix(s, "{") && strings.Contains(s, `"component"`)
}
