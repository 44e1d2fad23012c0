package records

import (
	"regexp"
	"strings"

	"github.com/envisage-infotech/hr-interview-desk/internal/domain/entities"
)

// Candidate-field extraction. These are advisory heuristics over free text:
// they fill display-only fields, are flagged as possibly inaccurate in the
// UI, and must never influence control flow. Absence of a match leaves the
// field empty rather than guess.

var (
	nameRe       = regexp.MustCompile(`(?i)\bname\s*(?:is|:)\s*([A-Za-z]+(?:\s+[A-Za-z]+){0,3})`)
	phoneRe      = regexp.MustCompile(`\b\d{10}\b|\+?\d{1,3}[-. ]?\d{3,5}[-. ]?\d{3,5}[-. ]?\d{3,4}`)
	experienceRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:years?|yrs?)\b`)
)

// positionVocabulary is the fixed set of role keywords the desk hires for;
// first match wins.
var positionVocabulary = []struct {
	keyword  string
	position string
}{
	{"full stack", "Full Stack Developer"},
	{"angular", "Angular Developer"},
	{"react", "React Developer"},
	{"node.js", "Node.js Developer"},
	{"node", "Node.js Developer"},
	{"next.js", "Next.js Developer"},
	{".net", ".NET Developer"},
	{"vue.js", "Vue.js Developer"},
	{"vue", "Vue.js Developer"},
	{"ionic", "Ionic Developer"},
	{"ios", "iOS Developer"},
	{"backend", "Backend Developer"},
	{"frontend", "Frontend Developer"},
	{"designer", "UI/UX Designer"},
}

// applyCandidateExtraction scans user-authored messages first, then the
// full transcript, and fills whichever candidate fields it can.
func applyCandidateExtraction(rec *entities.CallRecord) {
	sources := make([]string, 0, len(rec.Messages)+1)
	for _, m := range rec.Messages {
		if m.Role == entities.RoleUser {
			sources = append(sources, m.Content)
		}
	}
	sources = append(sources, rec.Transcript)

	for _, text := range sources {
		if text == "" {
			continue
		}
		if rec.CandidateName == "" {
			if m := nameRe.FindStringSubmatch(text); m != nil {
				rec.CandidateName = strings.TrimSpace(m[1])
			}
		}
		if rec.PhoneNumber == "" {
			if m := phoneRe.FindString(text); m != "" {
				rec.PhoneNumber = m
			}
		}
		if rec.Position == "" {
			rec.Position = matchPosition(text)
		}
		if rec.Experience == "" {
			if m := experienceRe.FindStringSubmatch(text); m != nil {
				rec.Experience = m[1] + " years"
			}
		}
	}
}

func matchPosition(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range positionVocabulary {
		if strings.Contains(lower, entry.keyword) {
			return entry.position
		}
	}
	return ""
}
