package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fathurrohman/library-management/internal/transport"
	"github.com/fathurrohman/library-management/pkg/logger"
)

// DashboardCounters is the set of counts the admin landing page shows.
type DashboardCounters struct {
	PendingAccounts int64     `json:"pending_accounts"`
	ActiveAccounts  int64     `json:"active_accounts"`
	ActiveBooks     int64     `json:"active_books"`
	ActiveLoans     int64     `json:"active_loans"`
	GeneratedAt     time.Time `json:"generated_at"`
}

type accountCounter interface {
	CountPending(ctx context.Context) (int64, error)
	CountActiveUsers(ctx context.Context) (int64, error)
}

type catalogCounter interface {
	CountActiveBooks(ctx context.Context) (int64, error)
}

type lendingCounter interface {
	CountActiveLoans(ctx context.Context) (int64, error)
}

type DashboardHandler struct {
	*transport.BaseHandler
	accounts accountCounter
	catalog  catalogCounter
	lending  lendingCounter
}

func NewDashboardHandler(accounts accountCounter, catalog catalogCounter, lending lendingCounter) *DashboardHandler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &DashboardHandler{
		BaseHandler: transport.NewBaseHandler(lg),
		accounts:    accounts,
		catalog:     catalog,
		lending:     lending,
	}
}

// Summary aggregates the counters. Store errors keep their type on the way
// out, so a timed-out count surfaces as 503 rather than a generic 500.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counters := DashboardCounters{GeneratedAt: time.Now()}

	var err error
	if counters.PendingAccounts, err = h.accounts.CountPending(ctx); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if counters.ActiveAccounts, err = h.accounts.CountActiveUsers(ctx); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if counters.ActiveBooks, err = h.catalog.CountActiveBooks(ctx); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if counters.ActiveLoans, err = h.lending.CountActiveLoans(ctx); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, counters)
}
