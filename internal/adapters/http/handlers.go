package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"ticketdesk/internal/adapters/http/middleware"
	ticketStore "ticketdesk/internal/adapters/storage/ticket"
	"ticketdesk/internal/application/orchestrators"
	"ticketdesk/internal/application/projections"
	domain "ticketdesk/internal/domain/ticket"
)

// templatesDir is a variable so tests can point it at the package-local
// templates directory.
var templatesDir = "internal/adapters/http/templates"

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// expectsJSON reports whether the client wants a JSON response instead
// of a redirect+render: an XHR marker header, an Accept header naming
// application/json, or an explicit ?json query override.
func expectsJSON(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "xmlhttprequest") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return r.URL.Query().Has("json")
}

// sendJSON writes a JSON response body with the given status.
func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// jsonError is the JSON error body shape.
func jsonError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]any{"status": "error", "message": message})
}

// ensureSessionToken returns the request's session token, creating a
// fresh session (and cookie) when the client has none. Flash messages
// need a session even for anonymous visitors.
func ensureSessionToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if token, ok := middleware.SessionToken(r); ok {
		if _, live := sessions.Get(token); live {
			return token, nil
		}
	}
	token, err := sessions.Create()
	if err != nil {
		return "", err
	}
	middleware.SetSessionCookie(w, token)
	return token, nil
}

// setFlash attaches a one-shot flash to the visitor's session.
func setFlash(w http.ResponseWriter, r *http.Request, flashType, message string) {
	token, err := ensureSessionToken(w, r)
	if err != nil {
		slog.Error("session_error", "error", err.Error())
		return
	}
	sessions.SetFlash(token, middleware.Flash{Type: flashType, Message: message})
}

// requireAuth guards protected routes. On failure it sets a flash
// error and redirects to /login, or answers 401 in JSON mode, and
// returns false.
func requireAuth(w http.ResponseWriter, r *http.Request) bool {
	if session, ok := middleware.GetSessionFromContext(r.Context()); ok && session.IsAuthenticated() {
		return true
	}
	// The flash is set in both modes: a JSON 401 still leaves the
	// message for the next HTML render.
	setFlash(w, r, middleware.FlashError, "Please log in to continue.")
	if expectsJSON(r) {
		jsonError(w, http.StatusUnauthorized, "Authentication required")
		return false
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return false
}

// storageError recovers a failed store operation at the request
// boundary: generic server error in JSON mode, flash + redirect home
// otherwise. The real error is logged, never sent to the client.
func storageError(w http.ResponseWriter, r *http.Request, err error, message string) {
	slog.Error("storage_error", "error", err.Error(), "path", r.URL.Path)
	if expectsJSON(r) {
		jsonError(w, http.StatusInternalServerError, message)
		return
	}
	setFlash(w, r, middleware.FlashError, message)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// render parses layout + page and executes with the session-aware
// funcMap. The pending flash is consumed here: every render reads and
// clears it.
func render(w http.ResponseWriter, r *http.Request, status int, templateName string, data map[string]any) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	var flash *middleware.Flash
	if token, ok := middleware.SessionToken(r); ok {
		if f, ok := sessions.TakeFlash(token); ok {
			flash = &f
		}
	}

	funcMap := template.FuncMap{
		"currentName":  func() string { return session.User.Name },
		"currentEmail": func() string { return session.User.Email },
		"isLoggedIn":   func() bool { return session.IsAuthenticated() },
		"flash":        func() *middleware.Flash { return flash },
		"csrfToken":    func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"formatDate": func(t time.Time) string {
			return t.Format("2 Jan 2006 15:04")
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := tpl.Execute(w, data); err != nil {
		slog.Error("render_error", "template", templateName, "error", err.Error())
	}
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data map[string]any) {
	render(w, r, http.StatusOK, templateName, data)
}

// handleHome handles GET / and doubles as the 404 page for any path no
// other route matched.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		render(w, r, http.StatusNotFound, "not_found.html", nil)
		return
	}
	renderTemplate(w, r, "landing.html", nil)
}

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// Already logged in: go straight to the dashboard
		if session, ok := middleware.GetSessionFromContext(r.Context()); ok && session.IsAuthenticated() {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", nil)
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.LoginInput{
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}

		identity, err := orchestrators.ExecuteLogin(input)
		if err != nil {
			if expectsJSON(r) {
				jsonError(w, http.StatusBadRequest, err.Error())
				return
			}
			setFlash(w, r, middleware.FlashError, err.Error())
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		establishSession(w, r, identity, "Login successful!")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleSignup handles GET (form) and POST (register) for /signup
func handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		if session, ok := middleware.GetSessionFromContext(r.Context()); ok && session.IsAuthenticated() {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "signup.html", nil)
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.SignupInput{
			Name:     r.FormValue("name"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}

		identity, err := orchestrators.ExecuteSignup(input)
		if err != nil {
			if expectsJSON(r) {
				jsonError(w, http.StatusBadRequest, err.Error())
				return
			}
			setFlash(w, r, middleware.FlashError, err.Error())
			http.Redirect(w, r, "/signup", http.StatusSeeOther)
			return
		}

		establishSession(w, r, identity, "Account created successfully!")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// establishSession attaches the identity to the visitor's session and
// answers with JSON or a dashboard redirect.
func establishSession(w http.ResponseWriter, r *http.Request, identity orchestrators.Identity, successMessage string) {
	token, err := ensureSessionToken(w, r)
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	user := middleware.User{Name: identity.Name, Email: identity.Email}
	sessions.SetUser(token, user)
	sessions.SetFlash(token, middleware.Flash{Type: middleware.FlashSuccess, Message: successMessage})

	if expectsJSON(r) {
		sendJSON(w, http.StatusOK, map[string]any{"status": "success", "user": user})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleSession handles GET /session: a JSON probe of the current
// authentication state.
func handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session, ok := middleware.GetSessionFromContext(r.Context())
	var user any
	if ok && session.IsAuthenticated() {
		user = session.User
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"authenticated": ok && session.IsAuthenticated(),
		"user":          user,
	})
}

// handleLogout clears the session on any method and redirects home.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.SessionToken(r); ok {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)

	if expectsJSON(r) {
		sendJSON(w, http.StatusOK, map[string]any{"status": "success"})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDashboard handles GET /dashboard: ticket list plus aggregate
// stats, with request timings when a collector is wired.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireAuth(w, r) {
		return
	}

	deps := projections.GetDashboardDeps{TicketStore: stores.TicketStore}
	result, err := projections.QueryGetDashboard(r.Context(), deps)
	if err != nil {
		storageError(w, r, err, "Failed to load dashboard")
		return
	}

	if expectsJSON(r) {
		sendJSON(w, http.StatusOK, result)
		return
	}

	data := map[string]any{
		"Tickets": result.Tickets,
		"Stats":   result.Stats,
	}
	if perfCollector != nil {
		data["Perf"] = perfCollector.Snapshot(time.Now().Add(-time.Hour), 5)
	}
	renderTemplate(w, r, "dashboard.html", data)
}

// handleTickets handles GET (list) and POST (create) for /tickets
func handleTickets(w http.ResponseWriter, r *http.Request) {
	if !requireAuth(w, r) {
		return
	}

	if r.Method == "GET" {
		tickets, err := stores.TicketStore.GetAll(r.Context())
		if err != nil {
			storageError(w, r, err, "Failed to load tickets")
			return
		}
		if expectsJSON(r) {
			sendJSON(w, http.StatusOK, tickets)
			return
		}
		renderTemplate(w, r, "tickets.html", map[string]any{"Tickets": tickets})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		fields := ticketFormFields(r)
		deps := orchestrators.CreateTicketDeps{
			TicketStore:   stores.TicketStore,
			EmailSender:   emailSender,
			NotifyAddress: notifyAddress,
			ReplyTo:       emailReplyTo,
		}

		if _, err := orchestrators.ExecuteCreateTicket(r.Context(), fields, deps); err != nil {
			ticketWriteError(w, r, err, "Failed to create ticket", "/tickets")
			return
		}

		if expectsJSON(r) {
			sendJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Ticket created"})
			return
		}
		setFlash(w, r, middleware.FlashSuccess, "Ticket created successfully!")
		http.Redirect(w, r, "/tickets", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleTicketEdit handles GET (form) and POST (update) for /tickets/{id}/edit
func handleTicketEdit(w http.ResponseWriter, r *http.Request) {
	if !requireAuth(w, r) {
		return
	}
	id := r.PathValue("id")

	if r.Method == "GET" {
		t, err := stores.TicketStore.GetByID(r.Context(), id)
		if errors.Is(err, ticketStore.ErrNotFound) {
			ticketNotFound(w, r)
			return
		}
		if err != nil {
			storageError(w, r, err, "Failed to load ticket")
			return
		}
		renderTemplate(w, r, "ticket_edit.html", map[string]any{"Ticket": t})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		fields := ticketFormFields(r)
		deps := orchestrators.UpdateTicketDeps{TicketStore: stores.TicketStore}

		if _, err := orchestrators.ExecuteUpdateTicket(r.Context(), id, fields, deps); err != nil {
			if errors.Is(err, ticketStore.ErrNotFound) {
				ticketNotFound(w, r)
				return
			}
			ticketWriteError(w, r, err, "Failed to update ticket", "/tickets/"+id+"/edit")
			return
		}

		if expectsJSON(r) {
			sendJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Ticket updated"})
			return
		}
		setFlash(w, r, middleware.FlashSuccess, "Ticket updated successfully!")
		http.Redirect(w, r, "/tickets", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleTicketDelete handles /tickets/{id}/delete on any method,
// matching the original route's behavior.
func handleTicketDelete(w http.ResponseWriter, r *http.Request) {
	if !requireAuth(w, r) {
		return
	}
	id := r.PathValue("id")

	deps := orchestrators.DeleteTicketDeps{TicketStore: stores.TicketStore}
	if err := orchestrators.ExecuteDeleteTicket(r.Context(), id, deps); err != nil {
		storageError(w, r, err, "Failed to delete ticket")
		return
	}

	if expectsJSON(r) {
		sendJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Ticket deleted"})
		return
	}
	setFlash(w, r, middleware.FlashSuccess, "Ticket deleted successfully!")
	http.Redirect(w, r, "/tickets", http.StatusSeeOther)
}

// ticketFormFields extracts the mutable ticket fields from a parsed
// form, applying the original defaults for status and priority.
func ticketFormFields(r *http.Request) domain.Fields {
	status := r.FormValue("status")
	if status == "" {
		status = domain.StatusOpen
	}
	priority := r.FormValue("priority")
	if priority == "" {
		priority = domain.PriorityMedium
	}
	return domain.Fields{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
		Status:      status,
		Priority:    priority,
		Assignee:    r.FormValue("assignee"),
	}
}

// ticketNotFound surfaces an unknown ticket id: JSON 404 or error
// flash + list redirect.
func ticketNotFound(w http.ResponseWriter, r *http.Request) {
	if expectsJSON(r) {
		jsonError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	setFlash(w, r, middleware.FlashError, "Ticket not found")
	http.Redirect(w, r, "/tickets", http.StatusSeeOther)
}

// ticketWriteError maps a failed create/update to a response:
// validation problems bounce back to the form, storage problems take
// the generic server-error path.
func ticketWriteError(w http.ResponseWriter, r *http.Request, err error, message, backTo string) {
	var validationErr error
	for _, candidate := range []error{domain.ErrEmptyTitle, domain.ErrInvalidStatus, domain.ErrInvalidPriority} {
		if errors.Is(err, candidate) {
			validationErr = candidate
			break
		}
	}
	if validationErr == nil {
		storageError(w, r, err, message)
		return
	}
	if expectsJSON(r) {
		jsonError(w, http.StatusBadRequest, validationErr.Error())
		return
	}
	setFlash(w, r, middleware.FlashError, validationErr.Error())
	http.Redirect(w, r, backTo, http.StatusSeeOther)
}
