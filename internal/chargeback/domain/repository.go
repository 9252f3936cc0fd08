package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FetchCases(ctx context.Context, db *gorm.DB) ([]Case, error)
	ListEvents(ctx context.Context, db *gorm.DB, chargebackID string) ([]CaseEvent, error)
}
