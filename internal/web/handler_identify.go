package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"

	"mealsnap/internal/nutrition"
)

// maxBodySize bounds the JSON body; base64 inflates images by ~4/3 so this
// allows photos of roughly 15 MB.
const maxBodySize = 20 * 1024 * 1024

type identifyRequest struct {
	Image            string `json:"image"`
	FollowUpQuestion string `json:"followUpQuestion"`
	MealContext      string `json:"mealContext"`
}

type identifyResponse struct {
	Result string `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stack string `json:"stack,omitempty"`
}

// identifyCall and followUpCall are the two valid request shapes. classify
// produces exactly one of them or fails; there is no ambiguous case.
type identifyCall struct {
	dataURL string
}

type followUpCall struct {
	question    string
	mealContext string
}

func classify(req identifyRequest) (any, error) {
	hasImage := req.Image != ""
	hasFollowUp := req.FollowUpQuestion != "" || req.MealContext != ""
	switch {
	case hasImage && hasFollowUp:
		return nil, nutrition.NewError(nutrition.ErrorInvalidRequest, "ambiguous_request",
			errors.New("provide either an image or a follow-up question with meal context, not both"))
	case hasImage:
		return identifyCall{dataURL: req.Image}, nil
	case req.FollowUpQuestion != "" && req.MealContext != "":
		return followUpCall{question: req.FollowUpQuestion, mealContext: req.MealContext}, nil
	default:
		return nil, nutrition.NewError(nutrition.ErrorInvalidRequest, "missing_fields",
			errors.New("provide either an image or a follow-up question with meal context"))
	}
}

func (s *Server) handleIdentifyMeal(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, nutrition.NewError(nutrition.ErrorInvalidRequest, "malformed_body", err))
		return
	}

	call, err := classify(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var result string
	switch c := call.(type) {
	case identifyCall:
		image, mimeType, derr := nutrition.DecodeImageDataURL(c.dataURL)
		if derr != nil {
			s.writeError(w, derr)
			return
		}
		result, err = s.analyzer.IdentifyMeal(r.Context(), image, mimeType)
	case followUpCall:
		result, err = s.analyzer.AnswerFollowUp(r.Context(), c.mealContext, c.question)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, identifyResponse{Result: result})
}

// writeError normalizes every failure — validation, configuration, or
// external-call — to the single 500 error shape, logging the stack
// server-side.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	stack := string(debug.Stack())
	s.logger.Error("identify request failed", "error", err, "stack", stack)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Stack: stack})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
