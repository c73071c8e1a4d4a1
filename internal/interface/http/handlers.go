package http

import (
	"encoding/json"
	"net/http"

	"github.com/tradepals/match-core/config"
	"github.com/tradepals/match-core/internal/application/command"
	"github.com/tradepals/match-core/internal/application/query"
	"github.com/tradepals/match-core/internal/domain/filter"
	"github.com/tradepals/match-core/internal/domain/shared"
	"github.com/tradepals/match-core/internal/domain/trust"
	"github.com/tradepals/match-core/pkg/logger"
)

// TrustCriteriaReader exposes the current trust policy for the admin GET.
type TrustCriteriaReader interface {
	Current() trust.TrustCriteria
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth returns overall service health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	healthy := true

	if s.deps.Postgres != nil {
		if err := s.deps.Postgres.Ping(r.Context()); err != nil {
			checks["postgres"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["postgres"] = "healthy"
		}
	}

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Ping(r.Context()); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "healthy"
		}
	}

	status := http.StatusOK
	statusText := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		statusText = "unhealthy"
	}

	writeJSON(w, status, map[string]interface{}{
		"status":         statusText,
		"checks":         checks,
		"uptime_seconds": int(s.Uptime().Seconds()),
	})
}

// handleReady returns readiness: the service can serve traffic only when the
// backing stores answer.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Postgres != nil {
		if err := s.deps.Postgres.Ping(r.Context()); err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive returns liveness: the process is up.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleRoot returns basic API info.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "match-core",
		"version": "v1",
		"endpoints": []string{
			"GET  /health",
			"GET  /api/v1/match/groups",
			"POST /api/v1/match/groups",
			"GET  /api/v1/match/cross",
			"GET  /api/v1/match/events/{id}",
			"GET  /api/v1/match/rematch",
			"POST /api/v1/match/skip",
			"POST /api/v1/filters",
			"GET  /api/v1/filters/status",
		},
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCHING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleMatchGroups forms match groups for the calling user.
// Query params: size, region, category.
func (s *Server) handleMatchGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.featureEnabled(config.FeatureMatchGroup, userID, false) {
		writeJSONError(w, http.StatusServiceUnavailable, "feature_disabled", "Group matching is currently disabled")
		return
	}

	q := query.MatchGroupsQuery{
		UserID:   userID,
		Size:     getQueryParamInt(r, "size", 0),
		Region:   getQueryParam(r, "region", ""),
		Category: getQueryParam(r, "category", ""),
	}

	result, err := s.deps.MatchGroupsHandler.Handle(r.Context(), q)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// matchGroupsRequest is the POST body for group formation.
type matchGroupsRequest struct {
	Size     int      `json:"size"`
	Region   string   `json:"region"`
	Category string   `json:"category"`
	Override []string `json:"override"`
}

// handleMatchGroupsPost forms match groups from a JSON body. The override
// variant builds one admin-assembled group and requires the admin API key.
func (s *Server) handleMatchGroupsPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req matchGroupsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	isAdmin := s.isAdminCaller(r)
	if len(req.Override) > 0 {
		if !isAdmin {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Group override requires the admin API key")
			return
		}
		if !s.featureEnabled(config.FeatureMatchAdminOverride, userID, true) {
			writeJSONError(w, http.StatusServiceUnavailable, "feature_disabled", "Admin override is currently disabled")
			return
		}
	} else if !s.featureEnabled(config.FeatureMatchGroup, userID, isAdmin) {
		writeJSONError(w, http.StatusServiceUnavailable, "feature_disabled", "Group matching is currently disabled")
		return
	}

	q := query.MatchGroupsQuery{
		UserID:   userID,
		Size:     req.Size,
		Region:   req.Region,
		Category: req.Category,
		Override: req.Override,
	}

	result, err := s.deps.MatchGroupsHandler.Handle(r.Context(), q)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCrossMatch returns the top pairwise candidates for the calling user.
func (s *Server) handleCrossMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	result, err := s.deps.CrossMatchHandler.Handle(r.Context(), query.CrossMatchQuery{UserID: userID})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleEventGroups forms groups under a platform event's stored constraints.
func (s *Server) handleEventGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.featureEnabled(config.FeatureMatchGroup, userID, false) {
		writeJSONError(w, http.StatusServiceUnavailable, "feature_disabled", "Group matching is currently disabled")
		return
	}

	eventID := r.PathValue("id")
	if eventID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Event ID is required")
		return
	}

	result, err := s.deps.MatchGroupsHandler.HandleEvent(r.Context(), query.EventGroupsQuery{
		UserID:  userID,
		EventID: eventID,
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleRematch re-scores previously seen candidates.
func (s *Server) handleRematch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.featureEnabled(config.FeatureMatchRematch, userID, false) {
		writeJSONError(w, http.StatusServiceUnavailable, "feature_disabled", "Rematching is currently disabled")
		return
	}

	result, err := s.deps.RematchHandler.Handle(r.Context(), query.RematchQuery{UserID: userID})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// skipMatchRequest is the POST body for skipping a candidate.
type skipMatchRequest struct {
	UserID string `json:"userId"`
}

// handleSkipMatch records a dismissed candidate.
func (s *Server) handleSkipMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req skipMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	cmd := command.SkipMatchCommand{UserID: userID, TargetID: req.UserID}
	if err := s.deps.SkipMatchHandler.Handle(r.Context(), cmd); err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
}

// ══════════════════════════════════════════════════════════════════════════════
// FILTER WORKFLOW HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// submitFiltersRequest is the POST body for a filter change request.
type submitFiltersRequest struct {
	Filters []string `json:"filters"`
}

// submitFiltersView is the wire shape of a submission outcome.
type submitFiltersView struct {
	Success       bool     `json:"success"`
	Status        string   `json:"status"`
	Message       string   `json:"message,omitempty"`
	RequestID     string   `json:"requestId,omitempty"`
	AutoApproved  bool     `json:"autoApproved"`
	CriteriaMet   []string `json:"criteriaMet,omitempty"`
	PriorityRatio float64  `json:"priorityRatio"`
}

// reviewFiltersView is the wire shape of a review outcome.
type reviewFiltersView struct {
	RequestID       string   `json:"requestId"`
	Status          string   `json:"status"`
	ApprovedFilters []string `json:"approvedFilters,omitempty"`
	RejectedFilters []string `json:"rejectedFilters,omitempty"`
	RejectionReason string   `json:"rejectionReason,omitempty"`
}

func toReviewView(r *command.ReviewFiltersResult) reviewFiltersView {
	return reviewFiltersView{
		RequestID:       r.RequestID,
		Status:          string(r.Status),
		ApprovedFilters: r.ApprovedFilters,
		RejectedFilters: r.RejectedFilters,
		RejectionReason: r.RejectionReason,
	}
}

// handleSubmitFilters submits a filter change request. Trusted users get
// their change applied immediately; everyone else lands in the review queue.
func (s *Server) handleSubmitFilters(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req submitFiltersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	cmd := command.SubmitFiltersCommand{
		UserID:        userID,
		Filters:       req.Filters,
		ForcePending:  !s.featureEnabled(config.FeatureFiltersAutoApprove, userID, false),
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.SubmitFiltersHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
	} else if result.Status == filter.StatusPending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, submitFiltersView{
		Success:       result.Success,
		Status:        string(result.Status),
		Message:       result.Message,
		RequestID:     result.RequestID,
		AutoApproved:  result.AutoApproved,
		CriteriaMet:   result.CriteriaMet,
		PriorityRatio: result.PriorityRatio,
	})
}

// handleFilterStatus returns the state of the calling user's latest request.
func (s *Server) handleFilterStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	result, err := s.deps.FilterStatusHandler.Handle(r.Context(), query.FilterStatusQuery{UserID: userID})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// approveFiltersRequest is the POST body for approving a pending request.
type approveFiltersRequest struct {
	UserID          string   `json:"userId"`
	ApprovedFilters []string `json:"approvedFilters"`
}

// handleApproveFilters approves a user's pending filter request, optionally
// narrowed to an admin-selected subset.
func (s *Server) handleApproveFilters(w http.ResponseWriter, r *http.Request) {
	var req approveFiltersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	cmd := command.ApproveFiltersCommand{
		UserID:          req.UserID,
		ApprovedFilters: req.ApprovedFilters,
		CorrelationID:   getRequestID(r.Context()),
	}

	result, err := s.deps.ReviewFiltersHandler.HandleApprove(r.Context(), cmd)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewView(result))
}

// rejectFiltersRequest is the POST body for rejecting a pending request.
type rejectFiltersRequest struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

// handleRejectFilters rejects a user's pending filter request.
func (s *Server) handleRejectFilters(w http.ResponseWriter, r *http.Request) {
	var req rejectFiltersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	cmd := command.RejectFiltersCommand{
		UserID:        req.UserID,
		Reason:        req.Reason,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.ReviewFiltersHandler.HandleReject(r.Context(), cmd)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewView(result))
}

// trustCriteriaView is the wire shape of the trust policy.
type trustCriteriaView struct {
	Priority []string `json:"priority"`
	General  []string `json:"general"`
}

// handleGetTrustCriteria returns the current trust policy.
func (s *Server) handleGetTrustCriteria(w http.ResponseWriter, r *http.Request) {
	criteria := s.deps.TrustCriteria.Current()
	writeJSON(w, http.StatusOK, trustCriteriaView{
		Priority: criteria.Priority,
		General:  criteria.General,
	})
}

// handleSetTrustCriteria replaces the trust policy wholesale.
func (s *Server) handleSetTrustCriteria(w http.ResponseWriter, r *http.Request) {
	var req trustCriteriaView
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	cmd := command.SetTrustCriteriaCommand{
		Priority:      req.Priority,
		General:       req.General,
		CorrelationID: getRequestID(r.Context()),
	}

	criteria, err := s.deps.SetTrustCriteriaHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trustCriteriaView{
		Priority: criteria.Priority,
		General:  criteria.General,
	})
}

// handleTrustScores returns the trust report over all users.
func (s *Server) handleTrustScores(w http.ResponseWriter, r *http.Request) {
	q := query.TrustScoresQuery{
		Page:     getQueryParamInt(r, "page", 1),
		PageSize: getQueryParamInt(r, "page_size", 50),
	}

	result, err := s.deps.TrustScoresHandler.Handle(r.Context(), q)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// requireUser extracts the calling user from the request header and writes a
// 400 when it is missing.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing_user", "X-User-ID header is required")
		return "", false
	}
	return userID, true
}

// isAdminCaller reports whether the request carries the admin API key.
func (s *Server) isAdminCaller(r *http.Request) bool {
	return s.config.AdminAPIKey != "" && r.Header.Get(s.config.APIKeyHeader) == s.config.AdminAPIKey
}

// featureEnabled evaluates a feature flag for the calling user.
func (s *Server) featureEnabled(name, userID string, isAdmin bool) bool {
	if s.deps.Features == nil {
		return true
	}
	return s.deps.Features.IsEnabled(name, &config.FeatureContext{UserID: userID, IsAdmin: isAdmin})
}

// respondDomainError maps a domain error to an HTTP status.
func (s *Server) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case shared.IsConflict(err):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case shared.IsExternalService(err):
		writeJSONError(w, http.StatusBadGateway, "upstream_error", "An upstream dependency failed")
	default:
		s.logger.Error("unhandled error",
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
