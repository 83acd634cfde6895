/*
Package sqlite provides the SQLite-backed implementation of crm.Store.

PURPOSE:
  Persists every CRM entity (clients, policies, claims, reminders, targets,
  users) in a single SQLite database. In production, the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  clients:    Policyholders with their rollup columns
  policies:   Policy records, unique policy_number
  claims:     Claims with their JSON status history, unique claim_number
  reminders:  Follow-up reminders
  targets:    Agent sales targets
  users:      Staff profiles, unique email

  Structured sub-records (address, nominees, status history, bonus, tags)
  are stored as JSON columns; they are only ever read and written whole.

UNIQUENESS:
  policy_number and claim_number carry unique indexes; violations surface
  as crm.ErrDuplicateNumber.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/crm.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := service.New(store, service.NewDefaultActorProvider(store))

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - crm/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/insurance-crm/crm"
)

// Store implements crm.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Clients (policyholders and prospects)
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT NOT NULL,
		alternate_phone TEXT,
		date_of_birth TEXT,
		address_json TEXT,
		client_type TEXT NOT NULL,
		priority TEXT NOT NULL,
		tags_json TEXT,
		notes TEXT,
		is_new_prospect INTEGER NOT NULL DEFAULT 1,
		assigned_agent TEXT,
		status TEXT NOT NULL,
		total_policies INTEGER NOT NULL DEFAULT 0,
		total_premium TEXT NOT NULL DEFAULT '0',
		total_maturity TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_clients_status ON clients(status);
	CREATE INDEX IF NOT EXISTS idx_clients_agent ON clients(assigned_agent);

	-- Policies
	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		policy_number TEXT NOT NULL,
		policy_type TEXT NOT NULL,
		company TEXT NOT NULL,
		plan_name TEXT NOT NULL,
		premium_amount TEXT NOT NULL DEFAULT '0',
		premium_frequency TEXT NOT NULL,
		sum_assured TEXT NOT NULL DEFAULT '0',
		policy_term_years INTEGER NOT NULL DEFAULT 0,
		start_date TEXT,
		maturity_date TEXT,
		renewal_date TEXT,
		next_premium_due TEXT,
		status TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		nominees_json TEXT,
		assigned_agent TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_policies_number ON policies(policy_number);
	CREATE INDEX IF NOT EXISTS idx_policies_client ON policies(client_id);
	CREATE INDEX IF NOT EXISTS idx_policies_status ON policies(status);
	-- Renewal report hot path
	CREATE INDEX IF NOT EXISTS idx_policies_renewal ON policies(status, renewal_date);
	CREATE INDEX IF NOT EXISTS idx_policies_agent ON policies(assigned_agent);

	-- Claims (status_history_json is append-only)
	CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		policy_id TEXT NOT NULL,
		claim_number TEXT NOT NULL,
		claim_type TEXT NOT NULL,
		claim_amount TEXT NOT NULL DEFAULT '0',
		approved_amount TEXT,
		claim_date TEXT NOT NULL,
		incident_date TEXT,
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		assigned_to TEXT,
		description TEXT,
		status_history_json TEXT,
		rejection_reason TEXT,
		shortfall_reason TEXT,
		settlement_date TEXT,
		payment_mode TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_claims_number ON claims(claim_number);
	CREATE INDEX IF NOT EXISTS idx_claims_client ON claims(client_id);
	CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);
	CREATE INDEX IF NOT EXISTS idx_claims_date ON claims(claim_date);

	-- Reminders
	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		policy_id TEXT,
		reminder_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		due_date TEXT NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		frequency TEXT NOT NULL,
		assigned_agent TEXT,
		completed_at TEXT,
		completed_by TEXT,
		snooze_until TEXT,
		amount TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Upcoming/overdue listings
	CREATE INDEX IF NOT EXISTS idx_reminders_status_due ON reminders(status, due_date);
	CREATE INDEX IF NOT EXISTS idx_reminders_client ON reminders(client_id);

	-- Sales targets
	CREATE TABLE IF NOT EXISTS targets (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		target_period TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		product_type TEXT NOT NULL,
		target_amount TEXT NOT NULL DEFAULT '0',
		achieved_amount TEXT NOT NULL DEFAULT '0',
		target_policies INTEGER NOT NULL DEFAULT 0,
		achieved_policies INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		achievement_percentage REAL NOT NULL DEFAULT 0,
		bonus_json TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Allocator read path: an agent's open targets
	CREATE INDEX IF NOT EXISTS idx_targets_agent_status ON targets(agent_id, status);
	CREATE INDEX IF NOT EXISTS idx_targets_status ON targets(status);

	-- Staff profiles
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		role TEXT NOT NULL,
		location TEXT,
		bio TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// QUERY HELPERS
// =============================================================================

// whereClause joins conditions into a WHERE fragment, or returns "" when
// there are none.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// orderClause resolves a "field" / "-field" sort key against a column
// whitelist, falling back to the default key. Unknown fields fall back
// rather than error so a bad query parameter cannot inject SQL.
func orderClause(sortBy, def string, columns map[string]string) string {
	if sortBy == "" {
		sortBy = def
	}
	dir := "ASC"
	field := sortBy
	if strings.HasPrefix(sortBy, "-") {
		dir = "DESC"
		field = sortBy[1:]
	}
	col, ok := columns[field]
	if !ok {
		return orderClause(def, def, columns)
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

// limitClause appends LIMIT/OFFSET for a normalized page; unlimited pages
// get no clause.
func limitClause(p crm.PageRequest) (string, []any) {
	if p.Unlimited() {
		return "", nil
	}
	p = p.Normalize()
	return " LIMIT ? OFFSET ?", []any{p.Limit, p.Offset()}
}

func (s *Store) countRows(query string, args []any) (int, error) {
	var n int
	err := s.db.QueryRow(query, args...).Scan(&n)
	return n, err
}

// =============================================================================
// SCAN/FORMAT HELPERS
// =============================================================================

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func timePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func decimalPtr(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d := parseDecimal(ns.String)
	return &d
}

// marshalJSON encodes v, returning NULL for nil values so empty
// sub-records do not round-trip as "null" strings.
func marshalJSON(v any) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func unmarshalJSON(ns sql.NullString, v any) {
	if ns.Valid && ns.String != "" {
		json.Unmarshal([]byte(ns.String), v)
	}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// statusCounts converts a count map into breakdown rows, largest first.
func statusCounts(m map[string]int) []crm.StatusCount {
	out := make([]crm.StatusCount, 0, len(m))
	for k, v := range m {
		out = append(out, crm.StatusCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
