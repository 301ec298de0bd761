package gormrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"curefront/internal/adapter/repo/gorm/model"
	"curefront/internal/app/ports"
	"curefront/internal/domain/outbreak"

	"gorm.io/gorm"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, sessionID string, events []outbreak.Event) error {
	if len(events) == 0 {
		return nil
	}
	db := getDBFromCtx(ctx, r.db)

	rows := make([]model.SimEvent, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		rows = append(rows, model.SimEvent{
			SessionID:  sessionID,
			Type:       ev.Type,
			OccurredAt: ev.OccurredAt,
			Payload:    payload,
		})
	}
	return db.Create(&rows).Error
}

func (r EventRepo) List(ctx context.Context, sessionID string, eventType string, limit int) ([]outbreak.Event, error) {
	db := getDBFromCtx(ctx, r.db)

	q := db.Model(&model.SimEvent{}).Where("session_id = ?", sessionID)
	if eventType != "" {
		q = q.Where("type = ?", eventType)
	}
	q = q.Order("occurred_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []model.SimEvent
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	events := make([]outbreak.Event, 0, len(rows))
	for _, row := range rows {
		ev := outbreak.Event{
			Type:       row.Type,
			OccurredAt: row.OccurredAt,
		}
		if len(row.Payload) > 0 {
			if err := json.Unmarshal(row.Payload, &ev.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal event payload: %w", err)
			}
		}
		events = append(events, ev)
	}
	return events, nil
}
