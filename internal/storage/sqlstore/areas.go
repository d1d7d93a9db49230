package sqlstore

import (
	"fmt"

	apperrors "github.com/julianstephens/pokrok/internal/errors"
	"github.com/julianstephens/pokrok/internal/models"
)

func (s *Store) AddArea(area models.Area) error {
	return s.UpdateArea(area)
}

func (s *Store) GetArea(id string) (models.Area, error) {
	var a models.Area
	err := s.queryRow("SELECT id, name, description, color, icon, sort_order FROM areas WHERE id = ?", id).
		Scan(&a.ID, &a.Name, &a.Description, &a.Color, &a.Icon, &a.Order)
	if err != nil {
		return models.Area{}, notFound(err, "area", id)
	}
	return a, nil
}

func (s *Store) GetAreas() ([]models.Area, error) {
	rows, err := s.query("SELECT id, name, description, color, icon, sort_order FROM areas ORDER BY sort_order, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	areas := []models.Area{}
	for rows.Next() {
		var a models.Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Color, &a.Icon, &a.Order); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

func (s *Store) UpdateArea(area models.Area) error {
	_, err := s.exec(`
		INSERT INTO areas (id, name, description, color, icon, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			color = excluded.color,
			icon = excluded.icon,
			sort_order = excluded.sort_order`,
		area.ID, area.Name, area.Description, area.Color, area.Icon, area.Order)
	if err != nil {
		return fmt.Errorf("failed to save area %s: %w", area.ID, err)
	}
	return nil
}

// DeleteArea removes the area and detaches everything that referenced it.
func (s *Store) DeleteArea(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"habits", "steps", "goals"} {
		if _, err := tx.Exec(s.dialect.Rebind("UPDATE "+table+" SET area_id = NULL WHERE area_id = ?"), id); err != nil {
			return fmt.Errorf("failed to detach %s from area %s: %w", table, id, err)
		}
	}
	res, err := tx.Exec(s.dialect.Rebind("DELETE FROM areas WHERE id = ?"), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("area", id)
	}
	return tx.Commit()
}
