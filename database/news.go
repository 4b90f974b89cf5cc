package database

import (
	"context"
	"fmt"

	"emergency-alert-service/models"
)

// CreateNews persists a news item
func (d *Database) CreateNews(ctx context.Context, item *models.News) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO news (id, title, content, category, related_report_id, author_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, item.ID, item.Title, item.Content, item.Category, item.RelatedReportID, item.AuthorID)
	if err != nil {
		return fmt.Errorf("failed to insert news: %w", err)
	}
	return nil
}

// ListNews returns all news items, newest first
func (d *Database) ListNews(ctx context.Context) ([]models.News, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, title, content, category, related_report_id, author_id, created_at
		FROM news ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	var items []models.News
	for rows.Next() {
		var item models.News
		if err := rows.Scan(&item.ID, &item.Title, &item.Content, &item.Category,
			&item.RelatedReportID, &item.AuthorID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan news: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
