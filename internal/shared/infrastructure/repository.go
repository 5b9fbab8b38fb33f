package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
)

// Executor est l'interface commune à *sql.DB et *sql.Tx
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// UnitOfWork gère les transactions pour les opérations d'écriture
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// DBUnitOfWork implémentation de UnitOfWork avec sql.DB
type DBUnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork crée une nouvelle instance de UnitOfWork
func NewUnitOfWork(db *sql.DB) UnitOfWork {
	return &DBUnitOfWork{db: db}
}

// Execute exécute une fonction dans une transaction
// Rollback sur erreur ou panic, Commit sinon
func (uow *DBUnitOfWork) Execute(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := uow.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// BaseRepository structure de base pour les repositories
type BaseRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewBaseRepository crée un nouveau repository de base
func NewBaseRepository(db *sql.DB) BaseRepository {
	return BaseRepository{db: db}
}

// WithTx retourne une copie du repository liée à la transaction
func (r BaseRepository) WithTx(tx *sql.Tx) BaseRepository {
	r.tx = tx
	return r
}

// Executor retourne l'exécuteur approprié (DB ou Tx)
func (r BaseRepository) Executor() Executor {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Query exécute une requête de lecture
func (r BaseRepository) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return r.Executor().QueryContext(ctx, query, args...)
}

// Prepare prépare une requête (dans la transaction si WithTx)
// L'appelant ferme le statement
func (r BaseRepository) Prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	return r.Executor().PrepareContext(ctx, query)
}
