package library

import (
	"fmt"
	"strings"
)

// nameID returns the ID of name in a name-keyed table, inserting it first
// when absent.
func nameID(q querier, table, name string) (int64, error) {
	var id int64
	err := q.QueryRow(
		"INSERT INTO "+table+" (name) VALUES (?) ON CONFLICT(name) DO UPDATE SET name = excluded.name RETURNING id", name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert %s %q: %w", table, name, mapSQLiteError(err))
	}
	return id, nil
}

func linkGenres(q querier, itemID int64, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		genreID, err := nameID(q, "genres", name)
		if err != nil {
			return err
		}
		if _, err := q.Exec("INSERT OR IGNORE INTO item_genres (item_id, genre_id) VALUES (?, ?)", itemID, genreID); err != nil {
			return fmt.Errorf("link genre %q: %w", name, mapSQLiteError(err))
		}
	}
	return nil
}

// LinkGenres attaches genres to an item, creating unknown genre names.
// Existing links are kept.
func (s *Store) LinkGenres(itemID int64, names []string) error {
	return linkGenres(s.db, itemID, names)
}

// LinkGenres attaches genres within a transaction.
func (t *Tx) LinkGenres(itemID int64, names []string) error { return linkGenres(t.tx, itemID, names) }

func linkStudio(q querier, itemID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	studioID, err := nameID(q, "studios", name)
	if err != nil {
		return err
	}
	if _, err := q.Exec("INSERT OR IGNORE INTO item_studios (item_id, studio_id) VALUES (?, ?)", itemID, studioID); err != nil {
		return fmt.Errorf("link studio %q: %w", name, mapSQLiteError(err))
	}
	return nil
}

// LinkStudio attaches a studio to an item, creating it when unknown.
func (s *Store) LinkStudio(itemID int64, name string) error { return linkStudio(s.db, itemID, name) }

// LinkStudio attaches a studio within a transaction.
func (t *Tx) LinkStudio(itemID int64, name string) error { return linkStudio(t.tx, itemID, name) }

func linkCast(q querier, itemID int64, cast []Person) error {
	for i, p := range cast {
		if p.ProviderKey == "" || p.Name == "" {
			continue
		}
		var personID int64
		err := q.QueryRow(`
			INSERT INTO persons (name, role, image_url, provider_key) VALUES (?, ?, ?, ?)
			ON CONFLICT(provider_key) DO UPDATE SET
				name = excluded.name,
				image_url = COALESCE(excluded.image_url, persons.image_url)
			RETURNING id`,
			p.Name, nullString(p.Role), nullString(p.ImageURL), p.ProviderKey,
		).Scan(&personID)
		if err != nil {
			return fmt.Errorf("upsert person %q: %w", p.ProviderKey, mapSQLiteError(err))
		}
		_, err = q.Exec(`
			INSERT INTO item_persons (item_id, person_id, role, character_name, sort_order) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(item_id, person_id, role) DO UPDATE SET
				character_name = excluded.character_name,
				sort_order = excluded.sort_order`,
			itemID, personID, p.Role, nullString(p.Character), i,
		)
		if err != nil {
			return fmt.Errorf("link person %q: %w", p.ProviderKey, mapSQLiteError(err))
		}
	}
	return nil
}

// LinkCast attaches credits to an item in billing order. Persons are
// shared across items by ProviderKey.
func (s *Store) LinkCast(itemID int64, cast []Person) error { return linkCast(s.db, itemID, cast) }

// LinkCast attaches credits within a transaction.
func (t *Tx) LinkCast(itemID int64, cast []Person) error { return linkCast(t.tx, itemID, cast) }

// Genres returns the genre names linked to an item, alphabetically.
func (s *Store) Genres(itemID int64) ([]string, error) {
	return s.names(`SELECT g.name FROM genres g JOIN item_genres ig ON ig.genre_id = g.id
		WHERE ig.item_id = ? ORDER BY g.name`, itemID)
}

// Studios returns the studio names linked to an item, alphabetically.
func (s *Store) Studios(itemID int64) ([]string, error) {
	return s.names(`SELECT st.name FROM studios st JOIN item_studios its ON its.studio_id = st.id
		WHERE its.item_id = ? ORDER BY st.name`, itemID)
}

// Cast returns the credits of an item in billing order.
func (s *Store) Cast(itemID int64) ([]Person, error) {
	rows, err := s.db.Query(`
		SELECT p.provider_key, p.name, ip.role, COALESCE(ip.character_name, ''), COALESCE(p.image_url, '')
		FROM item_persons ip JOIN persons p ON p.id = ip.person_id
		WHERE ip.item_id = ? ORDER BY ip.sort_order, p.id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list cast: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cast []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ProviderKey, &p.Name, &p.Role, &p.Character, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		cast = append(cast, p)
	}
	return cast, rows.Err()
}

func (s *Store) names(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
