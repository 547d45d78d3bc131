package inquiries

import (
	"context"
	"errors"
	"testing"
	"time"

	"agritrade-backend/internal/auth"
	"agritrade-backend/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 4, 1, 10, 15, 0, 0, time.UTC)

func newTestService(repo Repository, mailer Mailer) *Service {
	svc := NewService(repo, time.UTC, mailer, nil, ReplyConfig{FromName: "Sales Team", ReplyTo: "sales@example.com"})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestSubmitForcesPending(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)

	inq, err := svc.Submit(context.Background(), ContactRequest{
		Name: " Achieng ", Email: "Achieng@Example.com", ProductInterest: "Cashew", Message: "Price per tonne?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, inq.ID)
	assert.Equal(t, StatusPending, inq.Status)
	assert.Equal(t, "Achieng", inq.Name)
	assert.Equal(t, "achieng@example.com", inq.Email)
	assert.Equal(t, fixedNow, inq.CreatedAt)
	assert.Equal(t, "01 Apr 2026, 10:15", inq.TimeString)
	assert.NotNil(t, inq.Labels)
	assert.NotNil(t, inq.ReplyHistory)
}

func TestCreateLead(t *testing.T) {
	svc := newTestService(newMemRepo(), nil)

	inq, err := svc.CreateLead(context.Background(), LeadRequest{
		Name: "Walk-in", Status: StatusGhosted, DealValue: ptr(300), Labels: []string{"trade fair", "trade fair", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusGhosted, inq.Status)
	assert.Equal(t, []string{"trade fair"}, inq.Labels)
	assert.Equal(t, 300.0, *inq.DealValue)

	_, err = svc.CreateLead(context.Background(), LeadRequest{Name: "x", Status: StatusClosed})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.CreateLead(context.Background(), LeadRequest{Name: "x", Status: StatusPending, DealValue: ptr(-1)})
	assert.ErrorIs(t, err, ErrInvalidDealValue)
}

func TestSetStatusIsTotal(t *testing.T) {
	repo := newMemRepo(Inquiry{ID: "i1", Status: StatusClosedLost})
	svc := newTestService(repo, nil)

	prev := StatusClosedLost
	for _, s := range knownStatuses {
		change, err := svc.SetStatus(context.Background(), "i1", s)
		require.NoError(t, err, s)
		assert.Equal(t, prev, change.Previous)
		assert.Equal(t, s, change.Current)
		prev = s
	}
}

func TestSetStatusSelfTransitionIsWritten(t *testing.T) {
	repo := newMemRepo(Inquiry{ID: "i1", Status: StatusPending})
	svc := newTestService(repo, nil)

	change, err := svc.SetStatus(context.Background(), "i1", StatusPending)
	require.NoError(t, err)
	assert.Equal(t, StatusChange{ID: "i1", Previous: StatusPending, Current: StatusPending}, change)
	assert.Equal(t, 1, repo.writes)
}

func TestSetStatusErrors(t *testing.T) {
	svc := newTestService(newMemRepo(Inquiry{ID: "i1", Status: StatusPending}), nil)

	_, err := svc.SetStatus(context.Background(), "i1", Status("archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.SetStatus(context.Background(), "missing", StatusPending)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveCardMatchesSetStatus(t *testing.T) {
	repo := newMemRepo(
		Inquiry{ID: "i1", Status: StatusPending, CreatedAt: fixedNow},
		Inquiry{ID: "i2", Status: StatusPending, CreatedAt: fixedNow.Add(-time.Hour)},
	)
	svc := newTestService(repo, nil)

	board, change, err := svc.MoveCard(context.Background(), "i2", StatusClosedWon)
	require.NoError(t, err)
	assert.Equal(t, StatusChange{ID: "i2", Previous: StatusPending, Current: StatusClosedWon}, change)
	require.Len(t, board.Column(StatusClosedWon), 1)
	assert.Len(t, board.Column(StatusPending), 1)

	stored, err := svc.Get(context.Background(), "i2")
	require.NoError(t, err)
	assert.Equal(t, StatusClosedWon, stored.Status)
}

func TestMoveCardFailureReturnsPreviousBoard(t *testing.T) {
	repo := newMemRepo(Inquiry{ID: "i1", Status: StatusPending})
	svc := newTestService(repo, nil)

	board, _, err := svc.MoveCard(context.Background(), "i1", StatusClosed)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Len(t, board.Column(StatusPending), 1)
	assert.Zero(t, repo.writes)
}

func TestServiceLabels(t *testing.T) {
	repo := newMemRepo(Inquiry{ID: "i1", Labels: []string{"vip"}})
	svc := newTestService(repo, nil)
	ctx := context.Background()

	inq, err := svc.AddLabel(ctx, "i1", " export ")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "export"}, inq.Labels)
	assert.Equal(t, 1, repo.writes)

	inq, err = svc.AddLabel(ctx, "i1", "export")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "export"}, inq.Labels)
	assert.Equal(t, 1, repo.writes, "duplicate label must not write")

	inq, err = svc.RemoveLabel(ctx, "i1", "missing")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "export"}, inq.Labels)
	assert.Equal(t, 1, repo.writes)

	inq, err = svc.RemoveLabel(ctx, "i1", "vip")
	require.NoError(t, err)
	assert.Equal(t, []string{"export"}, inq.Labels)
}

func TestUpdateDealValue(t *testing.T) {
	repo := newMemRepo(Inquiry{ID: "i1"})
	svc := newTestService(repo, nil)
	ctx := context.Background()

	inq, err := svc.UpdateDealValue(ctx, "i1", ptr(0))
	require.NoError(t, err)
	require.NotNil(t, inq.DealValue)
	assert.Equal(t, 0.0, *inq.DealValue)

	inq, err = svc.UpdateDealValue(ctx, "i1", nil)
	require.NoError(t, err)
	assert.Nil(t, inq.DealValue)

	_, err = svc.UpdateDealValue(ctx, "i1", ptr(-5))
	assert.ErrorIs(t, err, ErrInvalidDealValue)
}

func TestUpdateNotes(t *testing.T) {
	svc := newTestService(newMemRepo(Inquiry{ID: "i1", Notes: "old"}), nil)
	inq, err := svc.UpdateNotes(context.Background(), "i1", "called back, wants samples")
	require.NoError(t, err)
	assert.Equal(t, "called back, wants samples", inq.Notes)

	_, err = svc.UpdateNotes(context.Background(), "nope", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendReplyReopensInquiry(t *testing.T) {
	repo := newMemRepo(Inquiry{ID: "i1", Name: "Baraka", Email: "baraka@example.com", Status: StatusClosedWon, ReplyHistory: []ReplyEntry{}})
	mailer := &fakeMailer{}
	svc := newTestService(repo, mailer)

	ctx := auth.WithIdentity(context.Background(), auth.Identity{ID: "u1", Email: "ops@example.com"})
	inq, err := svc.SendReply(ctx, "i1", "Re: sesame", "Hello Baraka")
	require.NoError(t, err)

	assert.Equal(t, StatusInProgress, inq.Status)
	require.Len(t, inq.ReplyHistory, 1)
	entry := inq.ReplyHistory[0]
	assert.Equal(t, "Re: sesame", entry.Subject)
	assert.Equal(t, "Hello Baraka", entry.Body)
	assert.Equal(t, "ops@example.com", entry.Sender)
	assert.Equal(t, "1775038500000", entry.ID)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "baraka@example.com", msg.ToEmail)
	assert.Equal(t, "Baraka", msg.ToName)
	assert.Equal(t, "Sales Team", msg.FromName)
	assert.Equal(t, "sales@example.com", msg.ReplyTo)
}

func TestSendReplyFailureLeavesStateUnchanged(t *testing.T) {
	repo := newMemRepo(Inquiry{ID: "i1", Email: "a@example.com", Status: StatusGhosted})
	mailer := &fakeMailer{err: &notifications.ProviderError{Status: 400, Text: "invalid sender"}}
	svc := newTestService(repo, mailer)

	_, err := svc.SendReply(context.Background(), "i1", "S", "B")
	var dispatchErr *DispatchError
	require.True(t, errors.As(err, &dispatchErr))
	assert.Equal(t, "invalid sender", dispatchErr.ProviderMessage())

	stored, err := svc.Get(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, StatusGhosted, stored.Status)
	assert.Empty(t, stored.ReplyHistory)
	assert.Zero(t, repo.writes)
}

func TestSendReplyValidation(t *testing.T) {
	svc := newTestService(newMemRepo(Inquiry{ID: "i1"}), &fakeMailer{})

	_, err := svc.SendReply(context.Background(), "i1", " ", "body")
	assert.ErrorIs(t, err, ErrEmptyReply)
	_, err = svc.SendReply(context.Background(), "i1", "subject", "")
	assert.ErrorIs(t, err, ErrEmptyReply)
	_, err = svc.SendReply(context.Background(), "i1", "subject", "body")
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestSendReplyWithoutMailer(t *testing.T) {
	svc := newTestService(newMemRepo(Inquiry{ID: "i1", Email: "a@example.com"}), nil)
	_, err := svc.SendReply(context.Background(), "i1", "S", "B")
	assert.ErrorIs(t, err, notifications.ErrMailerDisabled)
}

func TestDelete(t *testing.T) {
	svc := newTestService(newMemRepo(Inquiry{ID: "i1"}), nil)
	require.NoError(t, svc.Delete(context.Background(), "i1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "i1"), ErrNotFound)
}

func TestExportHonoursFilter(t *testing.T) {
	svc := newTestService(newMemRepo(
		Inquiry{ID: "i1", Name: "A", Status: StatusPending, CreatedAt: fixedNow},
		Inquiry{ID: "i2", Name: "B", Status: StatusClosedWon, CreatedAt: fixedNow},
	), nil)

	body, filename, err := svc.Export(context.Background(), ListFilter{Status: StatusClosedWon})
	require.NoError(t, err)
	assert.Equal(t, "inquiries_export_20260401.csv", filename)
	assert.Equal(t, csvHeader+"\n"+`2026-04-01,10:15,"B",,,"","",closed_won,`+"\n", string(body))

	_, _, err = svc.Export(context.Background(), ListFilter{Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStatsPropagatesReadFailure(t *testing.T) {
	repo := newMemRepo()
	repo.failAll = errStoreDown
	svc := newTestService(repo, nil)

	_, err := svc.Stats(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}
