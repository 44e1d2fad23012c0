package calendar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/envisage-infotech/hr-interview-desk/errors"
	"github.com/envisage-infotech/hr-interview-desk/internal/domain/entities"
	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/external/n8n"
)

// EventSource fetches raw calendar events from the workflow webhook.
type EventSource interface {
	FetchCalendarEvents(ctx context.Context) ([]n8n.RawEvent, error)
}

// Service normalizes webhook calendar events into the flat event list the
// dashboard renders.
type Service struct {
	source EventSource
	logger *zap.Logger
}

// NewService creates a calendar service over the given event source.
func NewService(source EventSource, logger *zap.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// ListEvents fetches, normalizes and deduplicates the upstream events.
// Events without a resolvable start and end are dropped, not surfaced as
// errors.
func (s *Service) ListEvents(ctx context.Context) ([]entities.CalendarEvent, error) {
	raw, err := s.source.FetchCalendarEvents(ctx)
	if err != nil {
		return nil, apperrors.ErrCalendarFetchFailed(err)
	}

	events := make([]entities.CalendarEvent, 0, len(raw))
	for _, re := range raw {
		ev, ok := s.mapEvent(re)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return dedupe(events), nil
}

// mapEvent converts one raw webhook event. Start/end may live under three
// different field names depending on the workflow; the first present one
// wins.
func (s *Service) mapEvent(re n8n.RawEvent) (entities.CalendarEvent, bool) {
	startRaw := firstTime(re.Start, re.StartTime, re.StartDateTime)
	endRaw := firstTime(re.End, re.EndTime, re.EndDateTime)

	start, startOK := resolveInstant(startRaw)
	end, endOK := resolveInstant(endRaw)
	if !startOK || !endOK {
		s.logger.Debug("dropping calendar event without resolvable bounds",
			zap.String("title", eventTitle(re)))
		return entities.CalendarEvent{}, false
	}
	if !start.Before(end) {
		s.logger.Debug("dropping calendar event with inverted bounds",
			zap.String("title", eventTitle(re)),
			zap.Time("start", start),
			zap.Time("end", end))
		return entities.CalendarEvent{}, false
	}

	title := eventTitle(re)
	ev := entities.CalendarEvent{
		ID:          eventID(re, start, end, title),
		Title:       title,
		Start:       start,
		End:         end,
		Description: re.Description,
		HTMLLink:    re.HTMLLink,
		HangoutLink: hangoutLink(re),
	}
	if startRaw != nil {
		ev.StartTimeZone = startRaw.TimeZone
	}
	if endRaw != nil {
		ev.EndTimeZone = endRaw.TimeZone
	}
	return ev, true
}

func firstTime(candidates ...*n8n.RawTime) *n8n.RawTime {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

// resolveInstant parses a Google-style event boundary. Timed events carry
// an RFC3339 dateTime; all-day events carry a bare date, anchored to local
// midnight.
func resolveInstant(rt *n8n.RawTime) (time.Time, bool) {
	if rt == nil {
		return time.Time{}, false
	}
	if rt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, rt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	if rt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", rt.Date, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

func eventTitle(re n8n.RawEvent) string {
	if re.Summary != "" {
		return re.Summary
	}
	if re.Title != "" {
		return re.Title
	}
	return "Event"
}

// eventID uses the remote id when present; otherwise the id is derived
// from the event's own content so repeated fetches produce the same id.
func eventID(re n8n.RawEvent, start, end time.Time, title string) string {
	if re.ID != nil {
		if id := fmt.Sprintf("%v", re.ID); id != "" {
			return id
		}
	}
	return fmt.Sprintf("%s-%s-%s", start.Format(time.RFC3339), end.Format(time.RFC3339), title)
}

func hangoutLink(re n8n.RawEvent) string {
	if re.HangoutLink != "" {
		return re.HangoutLink
	}
	if re.ConferenceData != nil {
		for _, ep := range re.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" && ep.URI != "" {
				return ep.URI
			}
		}
	}
	return ""
}

// descriptionDelimiter separates merged descriptions of duplicate events.
const descriptionDelimiter = "\n---\n"

// dedupe collapses events sharing (start, end, title). The survivor keeps
// the longer description; differing descriptions are concatenated so no
// detail is lost. Output preserves first-occurrence order.
func dedupe(events []entities.CalendarEvent) []entities.CalendarEvent {
	type key struct {
		start int64
		end   int64
		title string
	}

	out := make([]entities.CalendarEvent, 0, len(events))
	index := make(map[key]int, len(events))

	for _, ev := range events {
		k := key{start: ev.Start.UnixNano(), end: ev.End.UnixNano(), title: ev.Title}
		i, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, ev)
			continue
		}

		kept := &out[i]
		kept.Description = mergeDescriptions(kept.Description, ev.Description)
		if kept.HangoutLink == "" {
			kept.HangoutLink = ev.HangoutLink
		}
		if kept.HTMLLink == "" {
			kept.HTMLLink = ev.HTMLLink
		}
	}
	return out
}

func mergeDescriptions(a, b string) string {
	switch {
	case a == b:
		return a
	case a == "":
		return b
	case b == "":
		return a
	}
	longer, shorter := a, b
	if len(b) > len(a) {
		longer, shorter = b, a
	}
	return longer + descriptionDelimiter + shorter
}
