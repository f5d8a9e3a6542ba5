// Package repository provides read access to the record store.
package repository

import (
	"fmt"

	"github.com/yourusername/line-quality/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	TestEvent    TestEventRepository
	Intervention InterventionRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		TestEvent:    NewPostgresTestEventRepository(db),
		Intervention: NewPostgresInterventionRepository(db),
	}, nil
}
