package gormrepo

import (
	"context"
	"errors"
	"time"

	"curefront/internal/adapter/repo/gorm/model"
	"curefront/internal/app/ports"
	"curefront/internal/domain/outbreak"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepo {
	return SessionRepo{db: db}
}

func (r SessionRepo) Load(ctx context.Context, sessionID string) (ports.SessionRecord, error) {
	db := getDBFromCtx(ctx, r.db)

	var session model.SimSession
	if err := db.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SessionRecord{}, ports.ErrNotFound
		}
		return ports.SessionRecord{}, err
	}

	var rows []model.ProvinceState
	if err := db.Where("session_id = ?", sessionID).Order("ordinal ASC").Find(&rows).Error; err != nil {
		return ports.SessionRecord{}, err
	}

	record := ports.SessionRecord{
		SessionID: sessionID,
		Global: outbreak.GlobalState{
			CureProgress:   session.CureProgress,
			TotalOutposts:  int(session.TotalOutposts),
			ActiveOutposts: int(session.ActiveOutposts),
			BudgetZar:      int(session.BudgetZar),
		},
		DayIndex:       int(session.DayIndex),
		MinutesIntoDay: session.MinutesIntoDay,
		Version:        session.Version,
		UpdatedAt:      session.UpdatedAt,
	}
	record.Provinces = make([]outbreak.ProvinceState, 0, len(rows))
	for _, row := range rows {
		record.Provinces = append(record.Provinces, outbreak.ProvinceState{
			RegionID:         row.RegionID,
			DisplayName:      row.DisplayName,
			InfectionLevel:   row.InfectionLevel,
			OutpostCount:     int(row.OutpostCount),
			OutpostsDisabled: row.OutpostsDisabled,
			FullyInfected:    row.FullyInfected,
		})
	}
	if session.OutcomeKind != nil {
		outcome := outbreak.Outcome{
			Kind:   outbreak.OutcomeKind(*session.OutcomeKind),
			Global: record.Global,
		}
		if session.OutcomeDay != nil {
			outcome.DayIndex = int(*session.OutcomeDay)
		}
		if session.OutcomeSaved != nil {
			outcome.ProvincesSaved = int(*session.OutcomeSaved)
		}
		if session.OutcomeInfected != nil {
			outcome.FullyInfectedProvinces = int(*session.OutcomeInfected)
		}
		if session.DecidedAt != nil {
			outcome.DecidedAt = *session.DecidedAt
		}
		record.Outcome = &outcome
	}
	return record, nil
}

func (r SessionRepo) SaveWithVersion(ctx context.Context, record ports.SessionRecord, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db)

	session := sessionRow(record)
	if expectedVersion == 0 {
		if err := db.Create(&session).Error; err != nil {
			return err
		}
		return r.upsertProvinces(db, record)
	}

	res := db.Model(&model.SimSession{}).
		Where("session_id = ? AND version = ?", record.SessionID, expectedVersion).
		Updates(sessionUpdates(session))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return r.upsertProvinces(db, record)
}

func (r SessionRepo) upsertProvinces(db *gorm.DB, record ports.SessionRecord) error {
	if len(record.Provinces) == 0 {
		return nil
	}
	rows := make([]model.ProvinceState, 0, len(record.Provinces))
	for i, p := range record.Provinces {
		rows = append(rows, model.ProvinceState{
			SessionID:        record.SessionID,
			RegionID:         p.RegionID,
			Ordinal:          int32(i),
			DisplayName:      p.DisplayName,
			InfectionLevel:   p.InfectionLevel,
			OutpostCount:     int32(p.OutpostCount),
			OutpostsDisabled: p.OutpostsDisabled,
			FullyInfected:    p.FullyInfected,
			UpdatedAt:        record.UpdatedAt,
		})
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "region_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ordinal", "display_name", "infection_level",
			"outpost_count", "outposts_disabled", "fully_infected", "updated_at",
		}),
	}).Create(&rows).Error
}

func sessionRow(record ports.SessionRecord) model.SimSession {
	row := model.SimSession{
		SessionID:      record.SessionID,
		CureProgress:   record.Global.CureProgress,
		TotalOutposts:  int32(record.Global.TotalOutposts),
		ActiveOutposts: int32(record.Global.ActiveOutposts),
		BudgetZar:      int32(record.Global.BudgetZar),
		DayIndex:       int32(record.DayIndex),
		MinutesIntoDay: record.MinutesIntoDay,
		Version:        record.Version,
		UpdatedAt:      record.UpdatedAt,
	}
	if record.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}
	if record.Outcome != nil {
		kind := string(record.Outcome.Kind)
		day := int32(record.Outcome.DayIndex)
		saved := int32(record.Outcome.ProvincesSaved)
		infected := int32(record.Outcome.FullyInfectedProvinces)
		decidedAt := record.Outcome.DecidedAt
		row.OutcomeKind = &kind
		row.OutcomeDay = &day
		row.OutcomeSaved = &saved
		row.OutcomeInfected = &infected
		row.DecidedAt = &decidedAt
	}
	return row
}

func sessionUpdates(row model.SimSession) map[string]any {
	updates := map[string]any{
		"cure_progress":    row.CureProgress,
		"total_outposts":   row.TotalOutposts,
		"active_outposts":  row.ActiveOutposts,
		"budget_zar":       row.BudgetZar,
		"day_index":        row.DayIndex,
		"minutes_into_day": row.MinutesIntoDay,
		"version":          row.Version,
		"updated_at":       row.UpdatedAt,
	}
	if row.OutcomeKind != nil {
		updates["outcome_kind"] = row.OutcomeKind
		updates["outcome_day"] = row.OutcomeDay
		updates["outcome_saved"] = row.OutcomeSaved
		updates["outcome_infected"] = row.OutcomeInfected
		updates["decided_at"] = row.DecidedAt
	}
	return updates
}
