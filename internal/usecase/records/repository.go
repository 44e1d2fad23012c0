package records

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/envisage-infotech/hr-interview-desk/internal/domain/entities"
	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/external/vapi"
)

// refreshDebounce is the minimum interval between non-forced refreshes.
// The debounce covers attempts, not just successes; refreshes inside the
// window are dropped, never queued.
const refreshDebounce = 5 * time.Second

// maxPages bounds cursor-following so a misbehaving remote cannot loop us.
const maxPages = 50

// Repository fetches, converts and caches call records and the originating
// phone-number list.
type Repository struct {
	client vapi.Client
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	records     []entities.CallRecord
	loading     bool
	lastError   string
	lastAttempt time.Time
	loadedOnce  bool
}

// NewRepository creates a call-log repository.
func NewRepository(client vapi.Client, logger *zap.Logger) *Repository {
	return &Repository{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot returns a copy of the current record set plus loading/error
// state. The returned slice is never shared with internal state.
func (r *Repository) Snapshot() ([]entities.CallRecord, bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.CallRecord, len(r.records))
	copy(out, r.records)
	return out, r.loading, r.lastError
}

// AddLocal prepends a record for a call that just completed in this
// process. It is never merged with remote data; the next successful
// refresh replaces the whole set.
func (r *Repository) AddLocal(rec entities.CallRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append([]entities.CallRecord{rec}, r.records...)
}

// Refresh reloads the record set from the remote API. Calls within the
// debounce window are no-ops unless force is set. On failure the previous
// set is kept untouched; only a first-ever failure substitutes the
// built-in fallback sample so the dashboard is never empty.
func (r *Repository) Refresh(ctx context.Context, force bool) error {
	r.mu.Lock()
	now := r.now()
	if !force && !r.lastAttempt.IsZero() && now.Sub(r.lastAttempt) < refreshDebounce {
		r.mu.Unlock()
		r.logger.Debug("skipping refresh inside debounce window")
		return nil
	}
	r.lastAttempt = now
	r.loading = true
	r.lastError = ""
	r.mu.Unlock()

	logs, err := r.fetchAll(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false

	if err != nil {
		r.logger.Error("failed to load call records", zap.Error(err))
		r.lastError = err.Error()
		if !r.loadedOnce {
			r.records = fallbackRecords()
			r.loadedOnce = true
		}
		return err
	}

	converted := make([]entities.CallRecord, 0, len(logs))
	for _, log := range logs {
		converted = append(converted, Normalize(log))
	}
	r.records = converted
	r.loadedOnce = true
	r.logger.Info("loaded call records", zap.Int("count", len(converted)))
	return nil
}

// fetchAll follows the pagination cursor until the remote signals
// completion or answers with a bare array (a single final page).
func (r *Repository) fetchAll(ctx context.Context) ([]vapi.CallLog, error) {
	var all []vapi.CallLog
	cursor := ""
	for page := 0; page < maxPages; page++ {
		p, err := r.client.ListCalls(ctx, cursor)
		if err != nil {
			if len(all) > 0 {
				// Keep what was collected so far rather than failing the
				// whole refresh.
				r.logger.Warn("pagination aborted, keeping partial results",
					zap.Int("collected", len(all)), zap.Error(err))
				return all, nil
			}
			return nil, err
		}
		all = append(all, p.Calls...)
		if !p.HasMore || p.NextCursor == "" {
			break
		}
		cursor = p.NextCursor
	}
	return all, nil
}

// PhoneNumbers lists the originating numbers available for outbound calls.
func (r *Repository) PhoneNumbers(ctx context.Context) ([]entities.PhoneNumber, error) {
	raw, err := r.client.ListPhoneNumbers(ctx)
	if err != nil {
		return nil, err
	}
	numbers := make([]entities.PhoneNumber, 0, len(raw))
	for _, n := range raw {
		numbers = append(numbers, entities.PhoneNumber{
			ID:        n.ID,
			Number:    n.Number,
			Name:      n.Name,
			Provider:  n.Provider,
			Status:    n.Status,
			CreatedAt: n.CreatedAt,
		})
	}
	return numbers, nil
}
