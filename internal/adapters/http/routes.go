package web

import "net/http"

// registerRoutes maps the application routes onto the mux. Method
// dispatch happens inside each handler; /tickets/{id}/... use path
// patterns, everything unmatched falls through to handleHome's 404.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/signup", handleSignup)
	mux.HandleFunc("/session", handleSession)
	mux.HandleFunc("/logout", handleLogout)
	mux.HandleFunc("/dashboard", handleDashboard)
	mux.HandleFunc("/tickets", handleTickets)
	mux.HandleFunc("/tickets/{id}/edit", handleTicketEdit)
	mux.HandleFunc("/tickets/{id}/delete", handleTicketDelete)
}
