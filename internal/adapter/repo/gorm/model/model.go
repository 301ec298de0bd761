package model

import "time"

type SimSession struct {
	SessionID      string  `gorm:"column:session_id;primaryKey"`
	CureProgress   float64 `gorm:"column:cure_progress"`
	TotalOutposts  int32   `gorm:"column:total_outposts"`
	ActiveOutposts int32   `gorm:"column:active_outposts"`
	BudgetZar      int32   `gorm:"column:budget_zar"`
	DayIndex       int32   `gorm:"column:day_index"`
	MinutesIntoDay float64 `gorm:"column:minutes_into_day"`

	OutcomeKind     *string    `gorm:"column:outcome_kind"`
	OutcomeDay      *int32     `gorm:"column:outcome_day"`
	OutcomeSaved    *int32     `gorm:"column:outcome_saved"`
	OutcomeInfected *int32     `gorm:"column:outcome_infected"`
	DecidedAt       *time.Time `gorm:"column:decided_at"`

	Version   int64     `gorm:"column:version"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SimSession) TableName() string { return "sim_sessions" }

type ProvinceState struct {
	SessionID        string    `gorm:"column:session_id;primaryKey"`
	RegionID         string    `gorm:"column:region_id;primaryKey"`
	Ordinal          int32     `gorm:"column:ordinal"`
	DisplayName      string    `gorm:"column:display_name"`
	InfectionLevel   float64   `gorm:"column:infection_level"`
	OutpostCount     int32     `gorm:"column:outpost_count"`
	OutpostsDisabled bool      `gorm:"column:outposts_disabled"`
	FullyInfected    bool      `gorm:"column:fully_infected"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (ProvinceState) TableName() string { return "province_states" }

type SimEvent struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID  string    `gorm:"column:session_id"`
	Type       string    `gorm:"column:type"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
	Payload    []byte    `gorm:"column:payload"`
}

func (SimEvent) TableName() string { return "sim_events" }
