package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/spf13/cobra"

	focusQueries "github.com/ogenrwotdaniel/focusflow/internal/focus/application/queries"
)

const icsProductID = "-//FocusFlow//FocusFlow CLI//EN"

var (
	exportFormat           string
	exportOutput           string
	exportDays             int
	exportKind             string
	exportIncludeAbandoned bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export session history",
	Long: `Export finished sessions as iCalendar, CSV or JSON.

ICS files import into Google Calendar, Outlook and Apple Calendar so your
focus time shows up next to your meetings.

Examples:
  focusflow export                          # last 7 days as ICS to stdout
  focusflow export -f csv -o sessions.csv   # CSV file
  focusflow export -f json --days 30        # last 30 days as JSON
  focusflow export --kind focus --include-abandoned`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ListSessionsHandler == nil {
			return fmt.Errorf("session history not available")
		}
		if exportDays <= 0 {
			return fmt.Errorf("--days must be positive")
		}

		var write func(io.Writer, []focusQueries.SessionDTO) error
		switch exportFormat {
		case "ics", "ical":
			write = writeICS
		case "csv":
			write = writeCSV
		case "json":
			write = writeJSON
		default:
			return fmt.Errorf("unsupported format: %s (supported: ics, csv, json)", exportFormat)
		}

		now := time.Now()
		sessions, err := app.ListSessionsHandler.Handle(cmd.Context(), focusQueries.ListSessionsQuery{
			From:             now.AddDate(0, 0, -exportDays),
			To:               now,
			Kind:             exportKind,
			IncludeAbandoned: exportIncludeAbandoned,
		})
		if err != nil {
			return fmt.Errorf("failed to load sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "No sessions found in the last %d days.\n", exportDays)
			return nil
		}

		if exportOutput == "" {
			return write(cmd.OutOrStdout(), sessions)
		}

		var buf bytes.Buffer
		if err := write(&buf, sessions); err != nil {
			return err
		}
		if err := os.WriteFile(exportOutput, buf.Bytes(), 0600); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d sessions to %s\n", len(sessions), exportOutput)
		return nil
	},
}

func writeICS(w io.Writer, sessions []focusQueries.SessionDTO) error {
	return ical.NewEncoder(w).Encode(sessionCalendar(sessions, time.Now()))
}

// sessionCalendar converts sessions to a calendar with one event each.
func sessionCalendar(sessions []focusQueries.SessionDTO, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")

	for _, s := range sessions {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, s.ID.String()+"@focusflow")
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, s.StartTime.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, s.EndTime.UTC())
		event.Props.SetText(ical.PropSummary, sessionSummary(s))
		event.Props.SetText(ical.PropDescription, sessionDescription(s))
		event.Props.SetText(ical.PropCategories, s.Kind)
		if s.Completed {
			event.Props.SetText(ical.PropStatus, "CONFIRMED")
		} else {
			event.Props.SetText(ical.PropStatus, "CANCELLED")
		}
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

func sessionSummary(s focusQueries.SessionDTO) string {
	title := "Focus session"
	if s.Kind != "focus" {
		title = "Break"
	}
	if !s.Completed {
		title += " (abandoned)"
	}
	return title
}

func sessionDescription(s focusQueries.SessionDTO) string {
	desc := fmt.Sprintf("Planned: %d min", s.PlannedMinutes)
	if s.Kind == "focus" {
		desc += fmt.Sprintf("\nFocused: %d min\nInterruptions: %d", s.FocusMinutes, s.Interruptions)
	}
	if s.ProductivityRating != nil {
		desc += fmt.Sprintf("\nRating: %.1f/10", *s.ProductivityRating)
	}
	if s.AudioTrack != "" {
		desc += "\nAudio: " + s.AudioTrack
	}
	return desc
}

var csvHeader = []string{
	"id", "kind", "start", "end", "planned_minutes", "focus_minutes",
	"completed", "interruptions", "rating", "audio_track", "tree_id",
}

func writeCSV(w io.Writer, sessions []focusQueries.SessionDTO) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range sessions {
		rating := ""
		if s.ProductivityRating != nil {
			rating = strconv.FormatFloat(*s.ProductivityRating, 'f', 1, 64)
		}
		treeID := ""
		if s.TreeID != nil {
			treeID = s.TreeID.String()
		}
		record := []string{
			s.ID.String(),
			s.Kind,
			s.StartTime.Format(time.RFC3339),
			s.EndTime.Format(time.RFC3339),
			strconv.Itoa(s.PlannedMinutes),
			strconv.Itoa(s.FocusMinutes),
			strconv.FormatBool(s.Completed),
			strconv.Itoa(s.Interruptions),
			rating,
			s.AudioTrack,
			treeID,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, sessions []focusQueries.SessionDTO) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sessions)
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "ics", "export format (ics, csv, json)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().IntVarP(&exportDays, "days", "d", 7, "number of past days to export")
	exportCmd.Flags().StringVar(&exportKind, "kind", "", "only export focus or break sessions")
	exportCmd.Flags().BoolVar(&exportIncludeAbandoned, "include-abandoned", false, "include sessions that were stopped early")

	rootCmd.AddCommand(exportCmd)
}
