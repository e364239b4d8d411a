package classifier

import (
	"database/sql"
	"errors"
)

const (
	categoriesTable            = "categories"
	featuresTable              = "features"
	categoriesQuery            = `SELECT "id", "name", "document_count" FROM ` + categoriesTable + ` ORDER BY "id"`
	insertCategoryQuery        = `INSERT OR IGNORE INTO ` + categoriesTable + ` ("name", "document_count") VALUES (?, 0)`
	updateDocCountQuery        = `UPDATE ` + categoriesTable + ` SET document_count = document_count + 1 WHERE "name" = ?`
	categoryIDQuery            = `SELECT "id" FROM ` + categoriesTable + ` WHERE "name" = ?`
	updateOrInsertFeatureQuery = `INSERT OR REPLACE INTO ` + featuresTable + ` ("category_id", "feature", "count") VALUES (?, ?, ? + COALESCE((SELECT "count" FROM ` + featuresTable + ` WHERE "category_id" = ? AND "feature" = ?), 0))`
	featuresQuery              = `SELECT "feature", "count" FROM ` + featuresTable + ` WHERE "category_id" = ?`
)

// CreateSQLTables creates the tables used by the SQL store if they don't exist.
func CreateSQLTables(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + categoriesTable + ` (
        id INTEGER PRIMARY KEY ASC,
        name TEXT NOT NULL,
        document_count INTEGER NOT NULL DEFAULT 0,
        UNIQUE(name))`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS ` + featuresTable + ` (
        id INTEGER PRIMARY KEY ASC,
        category_id INTEGER NOT NULL,
        feature INTEGER NOT NULL,
        count INTEGER NOT NULL DEFAULT 0,
        FOREIGN KEY(category_id) REFERENCES categories(id),
        UNIQUE(category_id, feature))`)
	return err
}

type sqlStore struct {
	db                  *sql.DB
	categoriesQuery     *sql.Stmt
	insertCategoryQuery *sql.Stmt
	categoryIDQuery     *sql.Stmt
	featuresQuery       *sql.Stmt
}

// NewSQLStore returns an SQL database backed Store. The queries are written
// for SQLite; the tables must exist (see CreateSQLTables).
func NewSQLStore(db *sql.DB) (Store, error) {
	s := &sqlStore{
		db: db,
	}
	var err error
	if s.categoriesQuery, err = db.Prepare(categoriesQuery); err != nil {
		return nil, err
	}
	if s.insertCategoryQuery, err = db.Prepare(insertCategoryQuery); err != nil {
		return nil, err
	}
	if s.categoryIDQuery, err = db.Prepare(categoryIDQuery); err != nil {
		return nil, err
	}
	s.featuresQuery, err = db.Prepare(featuresQuery)
	return s, err
}

func (s *sqlStore) Reset() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM ` + featuresTable); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`DELETE FROM ` + categoriesTable); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *sqlStore) Categories() ([]string, error) {
	rows, err := s.categoriesQuery.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := make([]string, 0)
	for rows.Next() {
		var id int64
		var name string
		var documentCount int64
		if err := rows.Scan(&id, &name, &documentCount); err != nil {
			return nil, err
		}
		categories = append(categories, name)
	}
	return categories, rows.Err()
}

func (s *sqlStore) AddCategory(name string) error {
	_, err := s.insertCategoryQuery.Exec(name)
	return err
}

func (s *sqlStore) AddDocument(category string, v FeatureVector) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	res, err := tx.Exec(updateDocCountQuery, category)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		tx.Rollback()
		return err
	} else if n != 1 {
		if err := tx.Rollback(); err != nil {
			return err
		}
		return ErrCategoryDoesNotExist(category)
	}
	var categoryID int64
	if err := tx.Stmt(s.categoryIDQuery).QueryRow(category).Scan(&categoryID); err != nil {
		tx.Rollback()
		return err
	}
	for j, feature := range v.Indices {
		res, err := tx.Exec(updateOrInsertFeatureQuery, categoryID, feature, v.Counts[j], categoryID, feature)
		if err != nil {
			tx.Rollback()
			return err
		} else if n, err := res.RowsAffected(); err != nil {
			tx.Rollback()
			return err
		} else if n < 1 {
			if err := tx.Rollback(); err != nil {
				return err
			}
			return errors.New("classifier: failed to update feature count")
		}
	}
	return tx.Commit()
}

func (s *sqlStore) DocumentCounts() (map[string]int64, error) {
	rows, err := s.categoriesQuery.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		var documentCount int64
		if err := rows.Scan(&id, &name, &documentCount); err != nil {
			return nil, err
		}
		counts[name] = documentCount
	}
	return counts, rows.Err()
}

func (s *sqlStore) FeatureCounts(category string) (map[int]int64, error) {
	var categoryID int64
	if err := s.categoryIDQuery.QueryRow(category).Scan(&categoryID); err == sql.ErrNoRows {
		return nil, ErrCategoryDoesNotExist(category)
	} else if err != nil {
		return nil, err
	}
	rows, err := s.featuresQuery.Query(categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[int]int64)
	for rows.Next() {
		var feature int
		var count int64
		if err := rows.Scan(&feature, &count); err != nil {
			return nil, err
		}
		counts[feature] = count
	}
	return counts, rows.Err()
}
