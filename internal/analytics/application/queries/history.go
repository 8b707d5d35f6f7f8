package queries

import (
	"context"
	"fmt"
	"time"

	analyticsDomain "github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
)

// history loads the closed focus sessions that started on or after
// today minus days.
func history(ctx context.Context, sessions domain.SessionStore, clock domain.Clock, loc *time.Location, days int) ([]*domain.Session, error) {
	today := analyticsDomain.DayStart(clock.Now(), loc)
	result, err := sessions.QueryCompleted(ctx, domain.SessionFilter{
		Kinds:            []domain.SessionKind{domain.SessionKindFocus},
		From:             today.AddDate(0, 0, -days),
		IncludeAbandoned: true,
	})
	if err != nil {
		return nil, fmt.Errorf("reading session history: %w", err)
	}
	return result, nil
}

func preferences(ctx context.Context, store prefDomain.PreferenceStore) (prefDomain.Preferences, error) {
	if store == nil {
		return prefDomain.Defaults(), nil
	}
	prefs, err := store.Get(ctx)
	if err != nil {
		return prefDomain.Preferences{}, fmt.Errorf("reading preferences: %w", err)
	}
	return prefs, nil
}

func orSystemClock(clock domain.Clock) domain.Clock {
	if clock == nil {
		return domain.SystemClock{}
	}
	return clock
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
