package overview

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingmodels "paylane/internal/booking/models"
	bookingstore "paylane/internal/booking/store"
	calmodels "paylane/internal/calendar/models"
	calstore "paylane/internal/calendar/store"
	compmodels "paylane/internal/compliance/models"
	compstore "paylane/internal/compliance/store"
	id "paylane/pkg/domain"
	"paylane/pkg/testutil"
)

func TestSnapshot(t *testing.T) {
	ctx := testutil.Context()
	sessions := bookingstore.NewInMemory()
	issues := compstore.NewInMemory()
	windows := calstore.NewInMemory()
	svc := New(sessions, issues, windows)

	clientID := id.ClientID(uuid.New())
	addSession := func(day int, status bookingmodels.SessionStatus) {
		session := &bookingmodels.AdvisorySession{
			ID:       id.SessionID(uuid.New()),
			ClientID: clientID,
			Kind:     bookingmodels.KindTax,
			Date:     time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
			Status:   status,
		}
		require.NoError(t, sessions.Create(ctx, session))
	}
	addIssue := func(status compmodels.IssueStatus) {
		issue, err := compmodels.NewIssue(id.IssueID(uuid.New()), clientID, compmodels.SeverityMedium, "finding", testutil.FrozenTime)
		require.NoError(t, err)
		issue.Status = status
		require.NoError(t, issues.Create(ctx, issue))
	}

	// Frozen clock is 2025-03-01 09:00, so the day-1 session is overdue.
	addSession(1, bookingmodels.StatusScheduled)
	addSession(10, bookingmodels.StatusScheduled)
	addSession(12, bookingmodels.StatusScheduled)
	addSession(5, bookingmodels.StatusCancelled)
	addIssue(compmodels.IssueOpen)
	addIssue(compmodels.IssueOpen)
	addIssue(compmodels.IssueAcknowledged)
	addIssue(compmodels.IssueResolved)

	near, err := calmodels.NewFullDayWindow(id.WindowID(uuid.New()), time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), "near")
	require.NoError(t, err)
	far, err := calmodels.NewFullDayWindow(id.WindowID(uuid.New()), time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), "beyond horizon")
	require.NoError(t, err)
	require.NoError(t, windows.Create(ctx, near))
	require.NoError(t, windows.Create(ctx, far))

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.OpenIssues)
	assert.Equal(t, 1, snap.AcknowledgedIssues)
	assert.Equal(t, 2, snap.ScheduledSessions)
	assert.Equal(t, 1, snap.OverdueSessions)
	assert.Equal(t, 1, snap.UpcomingWindows)
}
