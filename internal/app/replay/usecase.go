package replay

import (
	"context"
	"errors"
	"strings"

	"curefront/internal/app/ports"
	"curefront/internal/domain/outbreak"
)

var ErrInvalidRequest = errors.New("invalid replay request")

const defaultLimit = 200

type Request struct {
	SessionID    string
	EventType    string
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
}

type Response struct {
	Events []outbreak.Event `json:"events"`
}

// UseCase reads back the session's notification log, newest first.
type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return Response{}, ErrInvalidRequest
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	events, err := u.Events.List(ctx, req.SessionID, strings.TrimSpace(req.EventType), req.Limit)
	if err != nil {
		return Response{}, err
	}
	return Response{Events: filterByTimeWindow(events, req.OccurredFrom, req.OccurredTo)}, nil
}

func filterByTimeWindow(events []outbreak.Event, from, to int64) []outbreak.Event {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]outbreak.Event, 0, len(events))
	for _, evt := range events {
		ts := evt.OccurredAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}
