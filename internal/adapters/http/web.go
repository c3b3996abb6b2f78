package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"ticketdesk/internal/adapters/email"
	"ticketdesk/internal/adapters/http/middleware"
	"ticketdesk/internal/adapters/http/perf"
	ticketStore "ticketdesk/internal/adapters/storage/ticket"
)

// Stores holds all storage dependencies.
type Stores struct {
	TicketStore ticketStore.Store
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var notifyAddress string
var emailReplyTo string

// SetEmailSender sets the sender and notification address for
// high-priority ticket alerts.
func SetEmailSender(sender email.Sender, notifyTo, replyTo string) {
	emailSender = sender
	notifyAddress = notifyTo
	emailReplyTo = replyTo
}

// SecureCookies marks session cookies Secure. Call before NewMux when
// serving over HTTPS.
func SecureCookies() {
	middleware.SecureCookies = true
}

// LoadCSRFKey decodes a hex CSRF key, or generates a random one when
// unset. In production the key must be set so tokens survive restarts.
func LoadCSRFKey(keyHex string, production bool) []byte {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CSRF key must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if production {
		log.Fatal("a CSRF key is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart)")
	return key
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector, csrfKey []byte) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> NormalizePath -> Mux
	return middleware.Chain(mux,
		middleware.NormalizePath,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
