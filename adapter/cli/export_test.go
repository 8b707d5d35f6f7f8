package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	focusQueries "github.com/ogenrwotdaniel/focusflow/internal/focus/application/queries"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/infrastructure/persistence"
)

func resetExportFlags() {
	exportFormat = "ics"
	exportOutput = ""
	exportDays = 7
	exportKind = ""
	exportIncludeAbandoned = false
}

func exportApp(t *testing.T) (*App, *domain.Session) {
	t.Helper()
	ctx := context.Background()
	store := persistence.NewMemorySessionRepository()
	start := time.Now().Add(-3 * time.Hour).Truncate(time.Second)

	focus, err := domain.NewSession(domain.SessionKindFocus, 25, start)
	require.NoError(t, err)
	focus.WithAudioTrack("rain")
	require.NoError(t, store.Create(ctx, focus))
	require.NoError(t, focus.Finish(start.Add(25*time.Minute), true))
	focus.DeriveRating(1)
	require.NoError(t, store.Update(ctx, focus))

	abandoned, err := domain.NewSession(domain.SessionKindFocus, 25, start.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, abandoned))
	require.NoError(t, abandoned.Finish(start.Add(70*time.Minute), false))
	require.NoError(t, store.Update(ctx, abandoned))

	a := NewApp(nil, nil, nil, nil, nil, nil)
	a.SetListSessionsHandler(focusQueries.NewListSessionsHandler(store))
	return a, focus
}

func runExport(t *testing.T) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	exportCmd.SetOut(&out)
	exportCmd.SetErr(&errOut)
	exportCmd.SetContext(context.Background())
	err := exportCmd.RunE(exportCmd, nil)
	return out.String(), err
}

func TestExportCmd_NoService(t *testing.T) {
	resetExportFlags()
	SetApp(nil)

	_, err := runExport(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session history not available")
}

func TestExportCmd_UnsupportedFormat(t *testing.T) {
	resetExportFlags()
	a, _ := exportApp(t)
	SetApp(a)
	defer SetApp(nil)

	exportFormat = "xlsx"
	_, err := runExport(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestExportCmd_ICS(t *testing.T) {
	resetExportFlags()
	a, focus := exportApp(t)
	SetApp(a)
	defer SetApp(nil)

	out, err := runExport(t)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))

	cal, err := ical.NewDecoder(strings.NewReader(out)).Decode()
	require.NoError(t, err)
	assert.Equal(t, icsProductID, cal.Props.Get(ical.PropProductID).Value)

	events := cal.Events()
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, focus.ID.String()+"@focusflow", event.Props.Get(ical.PropUID).Value)
	assert.Equal(t, "Focus session", event.Props.Get(ical.PropSummary).Value)
	assert.Equal(t, "CONFIRMED", event.Props.Get(ical.PropStatus).Value)
}

func TestExportCmd_CSVWithAbandoned(t *testing.T) {
	resetExportFlags()
	a, focus := exportApp(t)
	SetApp(a)
	defer SetApp(nil)

	exportFormat = "csv"
	exportIncludeAbandoned = true
	out, err := runExport(t)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewBufferString(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, focus.ID.String(), records[1][0])
	assert.Equal(t, "25", records[1][5])
	assert.Equal(t, "true", records[1][6])
	assert.Equal(t, "10.0", records[1][8])
	assert.Equal(t, "rain", records[1][9])
	assert.Equal(t, "false", records[2][6])
	assert.Equal(t, "10", records[2][5])
}

func TestExportCmd_JSONToFile(t *testing.T) {
	resetExportFlags()
	a, focus := exportApp(t)
	SetApp(a)
	defer SetApp(nil)

	exportFormat = "json"
	exportOutput = filepath.Join(t.TempDir(), "sessions.json")
	out, err := runExport(t)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(exportOutput)
	require.NoError(t, err)
	var sessions []focusQueries.SessionDTO
	require.NoError(t, json.Unmarshal(data, &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, focus.ID, sessions[0].ID)

	info, err := os.Stat(exportOutput)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestExportCmd_NothingToExport(t *testing.T) {
	resetExportFlags()
	a, _ := exportApp(t)
	SetApp(a)
	defer SetApp(nil)

	exportKind = "break"
	out, err := runExport(t)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSessionCalendar(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rating := 7.0

	cal := sessionCalendar([]focusQueries.SessionDTO{{
		ID:                 id,
		Kind:               "focus",
		PlannedMinutes:     25,
		StartTime:          start,
		EndTime:            start.Add(20 * time.Minute),
		FocusMinutes:       20,
		Interruptions:      2,
		ProductivityRating: &rating,
	}}, start)

	require.Len(t, cal.Children, 1)
	event := cal.Children[0]
	assert.Equal(t, id.String()+"@focusflow", event.Props.Get(ical.PropUID).Value)
	assert.Equal(t, "20260302T090000Z", event.Props.Get(ical.PropDateTimeStart).Value)
	assert.Equal(t, "20260302T092000Z", event.Props.Get(ical.PropDateTimeEnd).Value)
	assert.Equal(t, "focus", event.Props.Get(ical.PropCategories).Value)
}

func TestSessionText(t *testing.T) {
	rating := 4.5
	focus := focusQueries.SessionDTO{Kind: "focus", PlannedMinutes: 50, FocusMinutes: 12, Interruptions: 1, ProductivityRating: &rating}
	brk := focusQueries.SessionDTO{Kind: "break", PlannedMinutes: 5, Completed: true, AudioTrack: "forest"}

	assert.Equal(t, "Focus session (abandoned)", sessionSummary(focus))
	assert.Equal(t, "Break", sessionSummary(brk))
	assert.Equal(t, "Planned: 50 min\nFocused: 12 min\nInterruptions: 1\nRating: 4.5/10", sessionDescription(focus))
	assert.Equal(t, "Planned: 5 min\nAudio: forest", sessionDescription(brk))
}
