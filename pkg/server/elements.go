// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package server

import (
	"net/http"
	"time"

	"github.com/NVIDIA/osmet/pkg/pipeline"
	"github.com/NVIDIA/osmet/pkg/serializer"
)

// ElementsResponse lists the state of every registered pipeline element.
type ElementsResponse struct {
	Elements  []pipeline.ElementStatus `json:"elements"`
	Count     int                      `json:"count"`
	Timestamp time.Time                `json:"timestamp"`
}

// handleElements handles GET /v1/elements.
func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	elements := s.pipe.Elements()
	serializer.RespondJSON(w, http.StatusOK, ElementsResponse{
		Elements:  elements,
		Count:     len(elements),
		Timestamp: time.Now().UTC(),
	})
}
