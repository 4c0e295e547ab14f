package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"onboarding-service/db"
	"onboarding-service/models"
)

// ProfileStore is the per-user onboarding document store. UpdateProfile has
// partial-merge semantics: only the supplied fields change, a key present
// with a nil value overwrites to null, and everything else is untouched.
type ProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*models.UserProfileRecord, bool, error)
	UpdateProfile(ctx context.Context, uid string, fields map[string]interface{}) error
	ListProfiles(ctx context.Context, filter ClientFilter) ([]ProfileRow, error)
}

// ClientFilter narrows admin listings. Zero values mean no filtering.
type ClientFilter struct {
	Country string
	MinStep int
}

type ProfileRow struct {
	UID    string
	Record models.UserProfileRecord
}

var timeNow = time.Now

type PostgresProfileStore struct{}

func NewProfileStore() *PostgresProfileStore {
	return &PostgresProfileStore{}
}

func (s *PostgresProfileStore) GetProfile(ctx context.Context, uid string) (*models.UserProfileRecord, bool, error) {
	var doc []byte
	err := db.DB.QueryRowContext(ctx, "SELECT doc FROM user_profiles WHERE uid = $1", uid).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading profile %s: %w", uid, err)
	}

	var record models.UserProfileRecord
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, false, fmt.Errorf("decoding profile %s: %w", uid, err)
	}
	return &record, true, nil
}

// UpdateProfile merges the supplied fields into the stored document, creating
// it on first write. stepCompleted is clamped with GREATEST so a stale writer
// can never lower recorded progress. updatedAt is stamped on every save.
func (s *PostgresProfileStore) UpdateProfile(ctx context.Context, uid string, fields map[string]interface{}) error {
	merged := make(map[string]interface{}, len(fields)+1)
	for key, value := range fields {
		merged[key] = value
	}
	merged["updatedAt"] = timeNow().UTC().Format(time.RFC3339)

	doc, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encoding profile update for %s: %w", uid, err)
	}

	_, err = db.DB.ExecContext(ctx, `
		INSERT INTO user_profiles (uid, doc) VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE SET doc = jsonb_set(
			user_profiles.doc || EXCLUDED.doc,
			'{stepCompleted}',
			to_jsonb(GREATEST(
				COALESCE((user_profiles.doc->>'stepCompleted')::int, 0),
				COALESCE((EXCLUDED.doc->>'stepCompleted')::int, 0))))`,
		uid, doc)
	if err != nil {
		return fmt.Errorf("updating profile %s: %w", uid, err)
	}
	return nil
}

func (s *PostgresProfileStore) ListProfiles(ctx context.Context, filter ClientFilter) ([]ProfileRow, error) {
	query := "SELECT uid, doc FROM user_profiles"
	var clauses []string
	var args []interface{}
	if filter.Country != "" {
		args = append(args, filter.Country)
		clauses = append(clauses, fmt.Sprintf("doc->>'country' = $%d", len(args)))
	}
	if filter.MinStep > 0 {
		args = append(args, filter.MinStep)
		clauses = append(clauses, fmt.Sprintf("COALESCE((doc->>'stepCompleted')::int, 0) >= $%d", len(args)))
	}
	for index, clause := range clauses {
		if index == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY uid"

	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var results []ProfileRow
	for rows.Next() {
		var row ProfileRow
		var doc []byte
		if err := rows.Scan(&row.UID, &doc); err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		if err := json.Unmarshal(doc, &row.Record); err != nil {
			return nil, fmt.Errorf("decoding profile %s: %w", row.UID, err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
