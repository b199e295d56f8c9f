package web

import (
	"html/template"
	"net/http"
	"strings"

	"mealsnap/internal/domain"
	"mealsnap/internal/format"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w, nil, "base.html", "pages/home.html"); err != nil {
		s.logger.Error("render home failed", "error", err)
	}
}

func (s *Server) handleIdentifyPage(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w, nil, "base.html", "pages/identify.html"); err != nil {
		s.logger.Error("render identify failed", "error", err)
	}
}

// messageView is one transcript bubble. Assistant text goes through the
// formatter; user text is rendered as-is (escaped by the template).
type messageView struct {
	Role domain.Role
	Text string
	HTML template.HTML
}

// handleMessageFragment renders a single transcript bubble. The client
// appends the returned fragment to its transcript, so the formatting rules
// live server-side in exactly one place.
func (s *Server) handleMessageFragment(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.FormValue("role"))
	text := strings.TrimSpace(r.FormValue("text"))
	if !role.Valid() || text == "" {
		http.Error(w, "role and text required", http.StatusBadRequest)
		return
	}

	view := messageView{Role: role, Text: text}
	if role == domain.RoleAssistant {
		view.HTML = format.HTML(text)
	}

	if err := s.renderPartial(w, "partials/message.html", "message", view); err != nil {
		s.logger.Error("render message fragment failed", "error", err)
	}
}
