package n8n

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RawEvent is a calendar event as the workflow webhook reports it, before
// normalization. Google-style events carry start/end objects; some flows
// rename them to startTime/startDateTime.
type RawEvent struct {
	ID          any    `json:"id,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	HTMLLink    string `json:"htmlLink,omitempty"`
	HangoutLink string `json:"hangoutLink,omitempty"`

	Start         *RawTime `json:"start,omitempty"`
	StartTime     *RawTime `json:"startTime,omitempty"`
	StartDateTime *RawTime `json:"startDateTime,omitempty"`
	End           *RawTime `json:"end,omitempty"`
	EndTime       *RawTime `json:"endTime,omitempty"`
	EndDateTime   *RawTime `json:"endDateTime,omitempty"`

	ConferenceData *ConferenceData `json:"conferenceData,omitempty"`
}

// RawTime is a Google-style event boundary: dateTime for timed events,
// date only for all-day events.
type RawTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// ConferenceData holds video-call entry points.
type ConferenceData struct {
	EntryPoints []EntryPoint `json:"entryPoints,omitempty"`
}

// EntryPoint is one way to join a conference.
type EntryPoint struct {
	EntryPointType string `json:"entryPointType,omitempty"`
	URI            string `json:"uri,omitempty"`
}

// Client talks to the workflow automation webhook.
type Client struct {
	baseURL    string
	eventsPath string
	client     *http.Client
	logger     *zap.Logger
}

// NewClient creates a webhook client. baseURL is the n8n webhook base;
// eventsPath the path serving calendar events.
func NewClient(baseURL, eventsPath string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		eventsPath: eventsPath,
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// FetchCalendarEvents performs one GET against the events webhook and
// unwraps whichever envelope shape the flow happens to answer with. An
// unrecognized shape yields an empty list, not an error.
func (c *Client) FetchCalendarEvents(ctx context.Context) ([]RawEvent, error) {
	if c.eventsPath == "" {
		return nil, nil
	}

	url := c.baseURL + "/" + c.eventsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("fetch calendar events: %d %s", resp.StatusCode, string(text))
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.logger.Warn("calendar webhook returned unparseable body", zap.Error(err))
		return nil, nil
	}

	return c.unwrapEnvelope(raw), nil
}

// unwrapEnvelope tries the known response shapes in order: bare array,
// {data:[...]}, {body:[...]}, {json:[...]}, {items:[...]}, {json:{...}},
// and finally a single bare event object. Individual items may themselves
// be wrapped as {json:{...}}.
func (c *Client) unwrapEnvelope(raw json.RawMessage) []RawEvent {
	if items, ok := decodeItemList(raw); ok {
		return items
	}

	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Body  json.RawMessage `json:"body"`
		JSON  json.RawMessage `json:"json"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		for _, inner := range []json.RawMessage{envelope.Data, envelope.Body, envelope.JSON, envelope.Items} {
			if inner == nil {
				continue
			}
			if items, ok := decodeItemList(inner); ok {
				return items
			}
			// {json: {...}} with a single object inside.
			var single RawEvent
			if err := json.Unmarshal(inner, &single); err == nil && looksLikeEvent(single) {
				return []RawEvent{single}
			}
		}
	}

	var single RawEvent
	if err := json.Unmarshal(raw, &single); err == nil && looksLikeEvent(single) {
		return []RawEvent{single}
	}

	c.logger.Warn("unrecognized calendar response shape", zap.ByteString("body", truncateRaw(raw, 512)))
	return nil
}

func decodeItemList(raw json.RawMessage) ([]RawEvent, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	events := make([]RawEvent, 0, len(items))
	for _, item := range items {
		events = append(events, unwrapItem(item))
	}
	return events, true
}

// unwrapItem handles n8n's per-item {json: {...}} wrapping.
func unwrapItem(item json.RawMessage) RawEvent {
	var wrapped struct {
		JSON *RawEvent `json:"json"`
	}
	if err := json.Unmarshal(item, &wrapped); err == nil && wrapped.JSON != nil {
		return *wrapped.JSON
	}
	var ev RawEvent
	_ = json.Unmarshal(item, &ev)
	return ev
}

func looksLikeEvent(ev RawEvent) bool {
	return ev.Start != nil || ev.Summary != "" || ev.ID != nil
}

func truncateRaw(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
