package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/docparse/internal/fingerprint"
	"github.com/joseph-ayodele/docparse/internal/profiles"
)

// ProfileRepository persists template profiles as one row per template
// plus one row per (template, slot).
type ProfileRepository interface {
	profiles.Repository
	Count(ctx context.Context) (int, error)
}

type profileRepository struct {
	db     *DB
	logger *slog.Logger
}

var _ ProfileRepository = (*profileRepository)(nil)

func NewProfileRepository(db *DB, logger *slog.Logger) ProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &profileRepository{db: db, logger: logger}
}

// ReplaceAll swaps the stored profiles for store in one transaction.
func (r *profileRepository) ReplaceAll(ctx context.Context, store *profiles.Store) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin transaction", "error", err)
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM template_profile_values`); err != nil {
		return fmt.Errorf("clear profile values: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM template_profiles`); err != nil {
		return fmt.Errorf("clear profiles: %w", err)
	}

	insProfile := r.db.rebind(`INSERT INTO template_profiles (template_id, position, top_fonts) VALUES (?, ?, ?)`)
	insValue := r.db.rebind(`INSERT INTO template_profile_values (template_id, slot, value) VALUES (?, ?, ?)`)
	slots := store.Schema().Slots
	for i, p := range store.Profiles() {
		fonts, err := json.Marshal(p.TopFonts)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, insProfile, p.TemplateID, i, string(fonts)); err != nil {
			r.logger.Error("failed to insert profile", "template_id", p.TemplateID, "error", err)
			return fmt.Errorf("insert profile %q: %w", p.TemplateID, err)
		}
		for j, slot := range slots {
			if j >= len(p.Values) {
				break
			}
			if _, err = tx.ExecContext(ctx, insValue, p.TemplateID, slot, p.Values[j]); err != nil {
				return fmt.Errorf("insert profile %q slot %s: %w", p.TemplateID, slot, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("failed to commit profiles", "error", err)
		return err
	}
	r.logger.Info("profiles stored", "count", store.Len())
	return nil
}

// Load reads every profile against schema. Slots the schema does not know
// are ignored; slots without a row load as 0.
func (r *profileRepository) Load(ctx context.Context, schema fingerprint.Schema) (*profiles.Store, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT template_id, top_fonts FROM template_profiles ORDER BY position, template_id`)
	if err != nil {
		r.logger.Error("failed to list profiles", "error", err)
		return nil, err
	}
	var (
		list  []profiles.Profile
		index = map[string]int{}
	)
	for rows.Next() {
		var id, fonts string
		if err := rows.Scan(&id, &fonts); err != nil {
			rows.Close()
			return nil, err
		}
		p := profiles.Profile{TemplateID: id, Values: make([]float64, schema.Len()), TopFonts: []string{}}
		if err := json.Unmarshal([]byte(fonts), &p.TopFonts); err != nil {
			rows.Close()
			return nil, fmt.Errorf("profile %q top_fonts: %w", id, err)
		}
		index[id] = len(list)
		list = append(list, p)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	vals, err := r.db.QueryContext(ctx, `SELECT template_id, slot, value FROM template_profile_values`)
	if err != nil {
		return nil, err
	}
	defer vals.Close()
	for vals.Next() {
		var (
			id, slot string
			v        float64
		)
		if err := vals.Scan(&id, &slot, &v); err != nil {
			return nil, err
		}
		i, ok := index[id]
		j := schema.Index(slot)
		if !ok || j < 0 {
			continue
		}
		list[i].Values[j] = v
	}
	if err := vals.Err(); err != nil {
		return nil, err
	}

	return profiles.NewStore(schema, list...), nil
}

func (r *profileRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM template_profiles`).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}
