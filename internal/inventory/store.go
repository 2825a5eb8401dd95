package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"estate-assistant/internal/assistant"
	"estate-assistant/internal/common/logger"
)

var (
	ErrInventoryNotFound = errors.New("INVENTORY_NOT_FOUND")
	ErrQueryFailed       = errors.New("INVENTORY_QUERY_FAILED")
)

const (
	inventoryExistsQuery = `SELECT id FROM inventories WHERE id = $1`
	listAssetsQuery      = `
		SELECT name, type, value, location
		FROM assets
		WHERE inventory_id = $1
		ORDER BY created_at`
)

// Store reads inventories and their assets. It never writes.
type Store struct {
	db      *sql.DB
	printer *message.Printer
	logger  logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:      db,
		printer: message.NewPrinter(language.English),
		logger:  log.With(map[string]interface{}{"component": "inventory"}),
	}
}

// Assets lists the assets of an inventory in creation order.
func (s *Store) Assets(ctx context.Context, inventoryID string) ([]assistant.AssetRecord, error) {
	start := time.Now()

	var id string
	err := s.db.QueryRowContext(ctx, inventoryExistsQuery, inventoryID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrInventoryNotFound, inventoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	rows, err := s.db.QueryContext(ctx, listAssetsQuery, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var records []assistant.AssetRecord
	for rows.Next() {
		var name, assetType, value, location string
		if err := rows.Scan(&name, &assetType, &value, &location); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		records = append(records, assistant.AssetRecord{
			Name:     name,
			Type:     assetType,
			Value:    s.FormatValue(value),
			Location: location,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	s.logger.Debug("inventory assets loaded", map[string]interface{}{
		"inventoryId": inventoryID,
		"count":       len(records),
		"durationMs":  time.Since(start).Milliseconds(),
	})
	return records, nil
}

// ContextFor renders the inventory's assets as an assistant context string.
func (s *Store) ContextFor(ctx context.Context, inventoryID string) (string, error) {
	records, err := s.Assets(ctx, inventoryID)
	if err != nil {
		return "", err
	}
	return assistant.FormatContext(records), nil
}

// FormatValue renders plain non-negative numeric values as dollar amounts
// with digit grouping. Anything else, including amounts past the int64
// range, is returned unchanged.
func (s *Store) FormatValue(raw string) string {
	trimmed := strings.TrimSpace(raw)
	numeric := strings.ReplaceAll(strings.TrimPrefix(trimmed, "$"), ",", "")
	amount, err := strconv.ParseFloat(numeric, 64)
	if err != nil || math.IsNaN(amount) || amount < 0 || amount >= math.MaxInt64 {
		return trimmed
	}
	if amount == math.Trunc(amount) {
		return s.printer.Sprintf("$%d", int64(amount))
	}
	return s.printer.Sprintf("$%.2f", amount)
}
