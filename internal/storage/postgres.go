package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"agenttrust/internal/gametheory"
	"agenttrust/internal/montecarlo"

	_ "github.com/lib/pq"
)

// PostgresStore persists computed analysis results so operators can audit
// past proofs and detection validation runs. The analysis engine itself
// never touches storage; only the serving layer writes here.
type PostgresStore struct {
	db *sql.DB
}

// Config contains database connection parameters.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewPostgresStore creates a new database connection with connection pooling.
func NewPostgresStore(config Config) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Database, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// InitSchema creates the result tables.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS honesty_proofs (
		id SERIAL PRIMARY KEY,
		stake DOUBLE PRECISION NOT NULL,
		detection_probability DOUBLE PRECISION NOT NULL,
		reputation_value DOUBLE PRECISION NOT NULL,
		max_violation_gain DOUBLE PRECISION NOT NULL,
		coburn DOUBLE PRECISION NOT NULL,
		is_dominant BOOLEAN NOT NULL,
		margin DOUBLE PRECISION NOT NULL,
		required_stake DOUBLE PRECISION NOT NULL,
		required_detection DOUBLE PRECISION NOT NULL,
		computed_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_honesty_proofs_computed ON honesty_proofs (computed_at DESC);

	CREATE TABLE IF NOT EXISTS detection_runs (
		id SERIAL PRIMARY KEY,
		seed BIGINT NOT NULL,
		tier TEXT NOT NULL,
		total_violations BIGINT NOT NULL,
		detected_violations BIGINT NOT NULL,
		empirical_rate DOUBLE PRECISION NOT NULL,
		ci_low DOUBLE PRECISION NOT NULL,
		ci_high DOUBLE PRECISION NOT NULL,
		claimed_low DOUBLE PRECISION NOT NULL,
		claimed_high DOUBLE PRECISION NOT NULL,
		passed BOOLEAN NOT NULL,
		computed_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_detection_runs_tier ON detection_runs (tier, computed_at DESC);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveHonestyProof records one dominance analysis result.
//
// Postgres DOUBLE PRECISION rejects +Inf through some drivers; the
// required-stake sentinel for undetectable violations is stored as NULL
// and read back as +Inf.
func (s *PostgresStore) SaveHonestyProof(ctx context.Context, params gametheory.HonestyParameters, proof gametheory.HonestyProof) error {
	requiredStake := sql.NullFloat64{Float64: proof.RequiredStake, Valid: !math.IsInf(proof.RequiredStake, 1)}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO honesty_proofs
			(stake, detection_probability, reputation_value, max_violation_gain, coburn,
			 is_dominant, margin, required_stake, required_detection)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, params.Stake, params.DetectionProbability, params.ReputationValue,
		params.MaxViolationGain, params.Coburn,
		proof.IsDominantStrategy, proof.Margin, requiredStake, proof.RequiredDetection)
	if err != nil {
		return fmt.Errorf("failed to insert honesty proof: %w", err)
	}
	return nil
}

// SaveDetectionRun records every tier of one validation run in a single
// transaction.
func (s *PostgresStore) SaveDetectionRun(ctx context.Context, result montecarlo.DetectionValidationResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO detection_runs
			(seed, tier, total_violations, detected_violations, empirical_rate,
			 ci_low, ci_high, claimed_low, claimed_high, passed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, tier := range result.Tiers {
		_, err := stmt.ExecContext(ctx, int64(result.Seed), string(tier.Tier),
			tier.TotalViolations, tier.DetectedViolations, tier.EmpiricalRate,
			tier.ConfidenceLow, tier.ConfidenceHigh,
			tier.ClaimedLow, tier.ClaimedHigh, tier.Passed)
		if err != nil {
			return fmt.Errorf("failed to insert detection run tier %s: %w", tier.Tier, err)
		}
	}

	return tx.Commit()
}

// ProofRecord is a stored dominance analysis row.
type ProofRecord struct {
	ID            int64
	Params        gametheory.HonestyParameters
	IsDominant    bool
	Margin        float64
	RequiredStake float64 // +Inf when stored as NULL
	ComputedAt    time.Time
}

// RecentProofs returns the most recent stored proofs, newest first.
func (s *PostgresStore) RecentProofs(ctx context.Context, limit int) ([]ProofRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stake, detection_probability, reputation_value, max_violation_gain,
		       coburn, is_dominant, margin, required_stake, computed_at
		FROM honesty_proofs
		ORDER BY computed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ProofRecord
	for rows.Next() {
		var r ProofRecord
		var requiredStake sql.NullFloat64

		if err := rows.Scan(&r.ID, &r.Params.Stake, &r.Params.DetectionProbability,
			&r.Params.ReputationValue, &r.Params.MaxViolationGain, &r.Params.Coburn,
			&r.IsDominant, &r.Margin, &requiredStake, &r.ComputedAt); err != nil {
			return nil, err
		}

		r.RequiredStake = math.Inf(1)
		if requiredStake.Valid {
			r.RequiredStake = requiredStake.Float64
		}

		records = append(records, r)
	}

	return records, rows.Err()
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
