// Package records converts raw platform call logs into the internal
// record shape and caches the converted set for the dashboard.
package records

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/envisage-infotech/hr-interview-desk/internal/domain/entities"
	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/external/vapi"
)

const snippetLength = 120

// Normalize converts one raw call log into a CallRecord. It is a pure
// transformation: no I/O, never panics on missing fields.
func Normalize(log vapi.CallLog) entities.CallRecord {
	transcript := extractTranscript(log)
	messages := normalizeMessages(log)

	// A log can carry a transcript but no usable message entries. A
	// pre-labeled transcript still holds the turn structure, so recover
	// it; anything else becomes a single assistant turn to keep the
	// record displayable.
	if len(messages) == 0 && transcript != "" {
		if isPreLabeled(transcript) {
			messages = parseLabeledTranscript(transcript, log.StartedAt)
		} else {
			messages = []entities.RecordMessage{{
				Role:    entities.RoleAssistant,
				Content: transcript,
				Time:    log.StartedAt,
			}}
		}
	}

	rec := entities.CallRecord{
		ID:                log.ID,
		CallType:          mapCallType(log.Type),
		CallStatus:        mapCallStatus(log.Status),
		StartedAt:         log.StartedAt,
		EndedAt:           log.EndedAt,
		Duration:          formatDuration(log.StartedAt, log.EndedAt),
		Summary:           log.Summary,
		Transcript:        transcript,
		TranscriptSnippet: snippet(transcript),
		EndedReason:       log.EndedReason,
		RecordingURL:      recordingURL(log),
		Messages:          messages,
	}

	applyCandidateExtraction(&rec)
	return rec
}

// mapCallStatus maps the remote status vocabulary onto the three internal
// states. Every input maps to exactly one state; unknown or absent
// statuses are failed.
func mapCallStatus(status string) entities.CallStatus {
	switch status {
	case "ended":
		return entities.CallStatusCompleted
	case "in-progress", "ringing", "queued", "forwarding":
		return entities.CallStatusPending
	default:
		return entities.CallStatusFailed
	}
}

// mapCallType maps the remote call discriminator ("inboundPhoneCall",
// "outboundPhoneCall", "webCall", ...). Unrecognized values default to
// inbound.
func mapCallType(t string) entities.CallType {
	if strings.HasPrefix(strings.ToLower(t), "outbound") {
		return entities.CallTypeOutbound
	}
	return entities.CallTypeInbound
}

// isPreLabeled reports whether a transcript already carries speaker labels.
func isPreLabeled(transcript string) bool {
	return strings.Contains(transcript, "AI:") || strings.Contains(transcript, "User:")
}

// parseLabeledTranscript recovers structured turns from a pre-labeled
// transcript. "AI:" lines are assistant turns, "User:" lines user turns;
// unlabeled lines continue the previous turn, or open an assistant turn
// when nothing precedes them.
func parseLabeledTranscript(transcript string, at time.Time) []entities.RecordMessage {
	var out []entities.RecordMessage
	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var role entities.MessageRole
		var content string
		switch {
		case strings.HasPrefix(line, "AI:"):
			role = entities.RoleAssistant
			content = strings.TrimSpace(strings.TrimPrefix(line, "AI:"))
		case strings.HasPrefix(line, "User:"):
			role = entities.RoleUser
			content = strings.TrimSpace(strings.TrimPrefix(line, "User:"))
		default:
			if n := len(out); n > 0 {
				out[n-1].Content += "\n" + line
				continue
			}
			role = entities.RoleAssistant
			content = line
		}
		if content == "" {
			continue
		}
		out = append(out, entities.RecordMessage{Role: role, Content: content, Time: at})
	}
	return out
}

// extractTranscript picks the best transcript source, first non-empty wins:
// direct field, artifact field, reconstruction from the top-level message
// list, reconstruction from the artifact message list. Pre-labeled direct
// transcripts are used verbatim and never overwritten by reconstruction.
func extractTranscript(log vapi.CallLog) string {
	if t := strings.TrimSpace(log.Transcript); t != "" {
		return log.Transcript
	}
	if log.Artifact != nil {
		if t := strings.TrimSpace(log.Artifact.Transcript); t != "" {
			return log.Artifact.Transcript
		}
	}
	if t := rebuildTranscript(log.Messages); t != "" {
		return t
	}
	if log.Artifact != nil {
		if t := rebuildTranscript(log.Artifact.Messages); t != "" {
			return t
		}
	}
	return ""
}

// rebuildTranscript joins "<Speaker>: <content>" lines from a flat message
// list.
func rebuildTranscript(messages []vapi.CallMessage) string {
	var lines []string
	for _, m := range messages {
		content := strings.TrimSpace(m.Body())
		if content == "" {
			continue
		}
		lines = append(lines, speakerLabel(m.Role)+": "+content)
	}
	return strings.Join(lines, "\n")
}

func speakerLabel(role string) string {
	switch role {
	case "user":
		return "User"
	case "assistant":
		return "AI"
	default:
		return "System"
	}
}

// mapMessageRole maps remote role names onto the internal roles. Unknown
// roles are discarded (ok=false).
func mapMessageRole(role string) (entities.MessageRole, bool) {
	switch strings.ToLower(role) {
	case "bot", "assistant":
		return entities.RoleAssistant, true
	case "user", "customer":
		return entities.RoleUser, true
	case "system":
		return entities.RoleSystem, true
	default:
		return "", false
	}
}

// normalizeMessages gathers messages from the three possible locations,
// maps roles, drops empties, time-sorts (untimed entries after all timed
// ones, relative order preserved) and deduplicates.
func normalizeMessages(log vapi.CallLog) []entities.RecordMessage {
	type staged struct {
		msg   entities.RecordMessage
		timed bool
	}

	var all []staged
	add := func(role, content string, ms float64) {
		mapped, ok := mapMessageRole(role)
		if !ok {
			return
		}
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		s := staged{msg: entities.RecordMessage{Role: mapped, Content: content}}
		if ms > 0 {
			s.msg.Time = time.UnixMilli(int64(ms)).UTC()
			s.timed = true
		}
		all = append(all, s)
	}

	for _, m := range log.Messages {
		add(m.Role, m.Body(), m.Time)
	}
	if log.Artifact != nil {
		for _, m := range log.Artifact.Messages {
			add(m.Role, m.Body(), m.Time)
		}
		for _, m := range log.Artifact.MessagesOpenAIFormatted {
			add(m.Role, m.Content, 0)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].timed && all[j].timed {
			return all[i].msg.Time.Before(all[j].msg.Time)
		}
		// Timed entries sort before all untimed ones.
		return all[i].timed && !all[j].timed
	})

	// Two dedup passes: exact (role, content, time) duplicates anywhere,
	// then immediately adjacent (role, content) pairs whose times differ.
	seen := make(map[string]struct{}, len(all))
	var out []entities.RecordMessage
	for _, s := range all {
		exact := fmt.Sprintf("%s\x00%s\x00%d", s.msg.Role, s.msg.Content, s.msg.Time.UnixNano())
		if _, dup := seen[exact]; dup {
			continue
		}
		seen[exact] = struct{}{}

		if n := len(out); n > 0 && out[n-1].Role == s.msg.Role && out[n-1].Content == s.msg.Content {
			continue
		}
		out = append(out, s.msg)
	}
	return out
}

// formatDuration renders the call duration as "m:ss", or "Ongoing" for a
// call that has not ended.
func formatDuration(startedAt time.Time, endedAt *time.Time) string {
	if endedAt == nil {
		return "Ongoing"
	}
	diff := endedAt.Sub(startedAt)
	if diff < 0 {
		diff = 0
	}
	minutes := int(diff.Minutes())
	seconds := int(diff.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func snippet(transcript string) string {
	t := strings.TrimSpace(transcript)
	if len(t) <= snippetLength {
		return t
	}
	// Back up to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := snippetLength
	for cut > 0 && !utf8.RuneStart(t[cut]) {
		cut--
	}
	return t[:cut] + "..."
}

func recordingURL(log vapi.CallLog) string {
	if log.RecordingURL != "" {
		return log.RecordingURL
	}
	if log.Artifact != nil {
		return log.Artifact.RecordingURL
	}
	return ""
}
