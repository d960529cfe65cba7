// Copyright 2025 Poiesic Systems
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


package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/poiesic/brainlog/compose"
)

func (s *Server) composer(w http.ResponseWriter, r *http.Request) (ContentComposer, bool) {
	composer, err := s.composers(r.Context())
	if err != nil {
		s.logger.Error("composer unavailable", "err", err)
		s.writeError(w, statusForError(err), err.Error())
		return nil, false
	}
	return composer, true
}

func (s *Server) decodeInto(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !s.decodeInto(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Date) == "" {
		s.writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	composer, ok := s.composer(w, r)
	if !ok {
		return
	}

	summary, err := composer.DailySummary(r.Context(), req.Date)
	if err != nil {
		s.logger.Error("daily summary failed", "date", req.Date, "err", err)
		s.writeError(w, statusForError(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, toSummaryPayload(summary))
}

func (s *Server) handleBlog(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if !s.decodeInto(w, r, &req) {
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		s.writeError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}
	if strings.TrimSpace(req.PeriodName) == "" {
		req.PeriodName = req.StartDate + " to " + req.EndDate
	}

	composer, ok := s.composer(w, r)
	if !ok {
		return
	}

	post, err := composer.BlogPost(r.Context(), req.StartDate, req.EndDate, req.PeriodName)
	if err != nil {
		s.logger.Error("blog generation failed", "period", req.PeriodName, "err", err)
		s.writeError(w, statusForError(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, blogResponse{Title: post.Title, Content: post.Content})
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	var req skillsRequest
	if !s.decodeInto(w, r, &req) {
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		s.writeError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}

	composer, ok := s.composer(w, r)
	if !ok {
		return
	}

	summaries := make([]compose.DailySummary, len(req.Summaries))
	for i, p := range req.Summaries {
		summaries[i] = compose.DailySummary{
			Date:            p.Date,
			Content:         p.Content,
			KeyAchievements: p.KeyAchievements,
			TechStack:       p.TechStackUsed,
		}
	}
	existing := make([]compose.Skill, len(req.ExistingSkills))
	for i, p := range req.ExistingSkills {
		existing[i] = compose.Skill{
			Name:          p.Name,
			Category:      p.Category,
			MaturityLevel: p.MaturityLevel,
		}
	}

	skills, err := composer.AnalyzeSkills(r.Context(), req.StartDate, req.EndDate, summaries, existing)
	if err != nil {
		s.logger.Error("skill analysis failed", "err", err)
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	payloads := make([]skillPayload, len(skills))
	for i, skill := range skills {
		payloads[i] = skillPayload{
			Name:          skill.Name,
			Category:      skill.Category,
			MaturityLevel: skill.MaturityLevel,
			WorkExamples:  skill.WorkExamples,
			IsUpdate:      skill.IsUpdate,
		}
	}
	s.writeJSON(w, http.StatusOK, skillsResponse{Skills: payloads})
}

func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if !s.decodeInto(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	composer, ok := s.composer(w, r)
	if !ok {
		return
	}

	title := composer.ConversationTitle(r.Context(), req.Message)
	s.writeJSON(w, http.StatusOK, titleResponse{Title: title})
}

func toSummaryPayload(summary *compose.DailySummary) summaryPayload {
	return summaryPayload{
		Date:            summary.Date,
		Content:         summary.Content,
		KeyAchievements: summary.KeyAchievements,
		TechStackUsed:   summary.TechStack,
	}
}
