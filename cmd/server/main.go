package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"path/filepath"

	flag "github.com/spf13/pflag"
	_ "modernc.org/sqlite"

	emailPkg "ticketdesk/internal/adapters/email"
	web "ticketdesk/internal/adapters/http"
	"ticketdesk/internal/adapters/http/perf"
	"ticketdesk/internal/adapters/storage"
	ticketStorePkg "ticketdesk/internal/adapters/storage/ticket"
	"ticketdesk/internal/application/orchestrators"
	"ticketdesk/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.StringP("config", "c", "", "path to a JSONC config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	dataDir := flag.String("data-dir", "", "data directory (overrides config)")
	storeBackend := flag.String("store", "", "storage backend: jsonfile or sqlite (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *storeBackend != "" {
		cfg.Store = *storeBackend
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Performance instrumentation: request and query timings feed the
	// dashboard.
	collector := perf.NewCollector(perf.DefaultRingSize)

	var store ticketStorePkg.Store
	var documentExisted bool
	switch cfg.Store {
	case config.StoreSQLite:
		dbPath := filepath.Join(cfg.DataDir, "ticketdesk.db")
		dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		if err := db.Ping(); err != nil {
			log.Fatalf("database unreachable: %v", err)
		}
		schemaCreated, err := storage.InitDB(db)
		if err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
		documentExisted = !schemaCreated
		store = ticketStorePkg.NewSQLiteStore(storage.NewTimedDB(db, collector))
		log.Printf("Storage: sqlite (%s)", dbPath)
	case config.StoreJSONFile:
		docPath := filepath.Join(cfg.DataDir, "tickets.json")
		jsonStore, err := ticketStorePkg.NewJSONFileStore(docPath)
		if err != nil {
			log.Fatalf("failed to open ticket document: %v", err)
		}
		store = jsonStore
		documentExisted = jsonStore.DocumentExisted()
		log.Printf("Storage: jsonfile (%s)", docPath)
	}

	// Seed sample tickets only when the backing document is brand new
	seedDeps := orchestrators.SeedTicketsDeps{TicketStore: store, DocumentExisted: documentExisted}
	if err := orchestrators.ExecuteSeedTickets(context.Background(), seedDeps); err != nil {
		log.Fatalf("failed to seed tickets: %v", err)
	}

	// Configure email sender for high-priority ticket alerts
	if cfg.ResendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom), cfg.NotifyAddress, cfg.ReplyTo)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), cfg.NotifyAddress, cfg.ReplyTo)
		if cfg.Production() {
			log.Println("WARNING: resend key is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set TICKETDESK_RESEND_KEY for real delivery)")
		}
	}

	csrfKey := web.LoadCSRFKey(cfg.CSRFKey, cfg.Production())
	if cfg.Production() {
		web.SecureCookies()
	}

	mux := web.NewMux("static", &web.Stores{TicketStore: store}, collector, csrfKey)

	log.Printf("TicketDesk %s starting on %s (env=%s, store=%s)", version, cfg.Addr, cfg.Env, cfg.Store)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
