/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the cash-flow contribution scheduler server.
  Handles configuration, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Optionally seed it from a YAML state file
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: cashflow.db)
           Use ":memory:" for an in-memory database
  -state   YAML state file to import on startup (optional; replaces the
           database contents)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/cashflow.db"

  # Import a hand-edited household file, then serve it
  ./server -state="./household.yaml"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
  - store/statefile: YAML import
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/cashflow-engine/api"
	"github.com/warp/cashflow-engine/store/sqlite"
	"github.com/warp/cashflow-engine/store/statefile"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "cashflow.db", "SQLite database path")
	statePath := flag.String("state", "", "YAML state file to import on startup")
	flag.Parse()

	// Initialize store
	st, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer st.Close()

	// Seed from a state file when requested
	if *statePath != "" {
		record, err := statefile.Load(*statePath)
		if err != nil {
			log.Fatalf("Failed to load state file: %v", err)
		}
		if err := st.Seed(context.Background(), record); err != nil {
			log.Fatalf("Failed to import state file: %v", err)
		}
		log.Printf("Imported %d bills and %d payees from %s",
			len(record.Bills), len(record.Payees), *statePath)
	}

	// Create router
	router := api.NewRouter(api.NewHandler(st))

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
