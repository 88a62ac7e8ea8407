package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/npc-engine/pkg/npc"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

// SQLiteStorage archives populations in a SQLite file. Each record is one
// row so single NPCs can be read without decoding the whole population.
type SQLiteStorage struct {
	conn   *sqlx.DB
	logger *slog.Logger
}

// Ensure SQLiteStorage implements Storage interface
var _ storage.Storage = (*SQLiteStorage)(nil)
var _ storage.OccupationQuerier = (*SQLiteStorage)(nil)

type populationRow struct {
	ID            string `db:"id"`
	Seed          string `db:"seed"`
	SchemaVersion int    `db:"schema_version"`
	Count         int    `db:"npc_count"`
	CreatedAt     string `db:"created_at"`
}

type npcRow struct {
	NPCID  string `db:"npc_id"`
	Record string `db:"record_json"`
}

// NewSQLiteStorage opens or creates the database at path and applies the schema.
func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStorage{conn: conn, logger: logger}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS populations (
		id TEXT PRIMARY KEY,
		seed TEXT NOT NULL,
		schema_version INTEGER NOT NULL,
		npc_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS npcs (
		population_id TEXT NOT NULL REFERENCES populations(id) ON DELETE CASCADE,
		npc_id TEXT NOT NULL,
		idx INTEGER NOT NULL DEFAULT 0,
		occupation TEXT NOT NULL,
		full_name TEXT NOT NULL,
		record_json TEXT NOT NULL,
		PRIMARY KEY (population_id, npc_id)
	);

	CREATE INDEX IF NOT EXISTS idx_npcs_occupation ON npcs(population_id, occupation);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return err
	}

	// Files written before records kept their generation index lack idx.
	var hasIdx int
	if err := s.conn.Get(&hasIdx, "SELECT COUNT(*) FROM pragma_table_info('npcs') WHERE name = 'idx'"); err != nil {
		return fmt.Errorf("failed to inspect npcs table: %w", err)
	}
	if hasIdx == 0 {
		if _, err := s.conn.Exec("ALTER TABLE npcs ADD COLUMN idx INTEGER NOT NULL DEFAULT 0"); err != nil {
			return fmt.Errorf("failed to add idx column: %w", err)
		}
	}
	_, err := s.conn.Exec("CREATE INDEX IF NOT EXISTS idx_npcs_order ON npcs(population_id, idx)")
	return err
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.conn.Close()
}

// SavePopulation replaces any stored population with the same id.
func (s *SQLiteStorage) SavePopulation(ctx context.Context, pop *npc.Population) error {
	if pop == nil {
		return errors.New("population cannot be nil")
	}

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id := pop.ID.String()
	if _, err := tx.ExecContext(ctx, "DELETE FROM npcs WHERE population_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear npcs: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO populations (id, seed, schema_version, npc_count, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, pop.Seed, pop.SchemaVersion, pop.Count, pop.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save population: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO npcs
		(population_id, npc_id, idx, occupation, full_name, record_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare npc insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range pop.NPCs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, id, rec.ID, i, rec.Background.Occupation, rec.Identity.FullName, string(data)); err != nil {
			return fmt.Errorf("failed to save %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("Archived population", "uuid", pop.ID, "count", len(pop.NPCs))
	return nil
}

func (s *SQLiteStorage) LoadPopulation(ctx context.Context, id uuid.UUID) (*npc.Population, error) {
	var row populationRow
	err := s.conn.GetContext(ctx, &row,
		"SELECT id, seed, schema_version, npc_count, created_at FROM populations WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrPopulationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load population: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	var rows []npcRow
	err = s.conn.SelectContext(ctx, &rows,
		"SELECT npc_id, record_json FROM npcs WHERE population_id = ? ORDER BY idx, npc_id", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load npcs: %w", err)
	}

	recs, err := decodeRecords(rows)
	if err != nil {
		return nil, err
	}
	return &npc.Population{
		ID:            id,
		Seed:          row.Seed,
		SchemaVersion: row.SchemaVersion,
		Count:         row.Count,
		CreatedAt:     createdAt,
		NPCs:          recs,
	}, nil
}

// NPCsByOccupation returns the records of one population holding occupation,
// in generation order, using the occupation index instead of decoding every row.
func (s *SQLiteStorage) NPCsByOccupation(ctx context.Context, id uuid.UUID, occupation string) ([]*npc.Record, error) {
	var found int
	if err := s.conn.GetContext(ctx, &found, "SELECT COUNT(*) FROM populations WHERE id = ?", id.String()); err != nil {
		return nil, fmt.Errorf("failed to look up population: %w", err)
	}
	if found == 0 {
		return nil, storage.ErrPopulationNotFound
	}

	var rows []npcRow
	err := s.conn.SelectContext(ctx, &rows,
		"SELECT npc_id, record_json FROM npcs WHERE population_id = ? AND occupation = ? ORDER BY idx, npc_id",
		id.String(), occupation)
	if err != nil {
		return nil, fmt.Errorf("failed to query npcs: %w", err)
	}
	return decodeRecords(rows)
}

func decodeRecords(rows []npcRow) ([]*npc.Record, error) {
	recs := make([]*npc.Record, 0, len(rows))
	for _, r := range rows {
		var rec npc.Record
		if err := json.Unmarshal([]byte(r.Record), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", r.NPCID, err)
		}
		recs = append(recs, &rec)
	}
	if err := migrateRecords(recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *SQLiteStorage) DeletePopulation(ctx context.Context, id uuid.UUID) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM npcs WHERE population_id = ?", id.String()); err != nil {
		return fmt.Errorf("failed to delete npcs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM populations WHERE id = ?", id.String()); err != nil {
		return fmt.Errorf("failed to delete population: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStorage) ListPopulations(ctx context.Context) ([]uuid.UUID, error) {
	var raw []string
	if err := s.conn.SelectContext(ctx, &raw, "SELECT id FROM populations ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list populations: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			s.logger.Warn("Skipping malformed population id", "id", r)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
