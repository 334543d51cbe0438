package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"globetrotter-service/internal/domain"
)

func TestChallengeLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := env.register(t, "alice")
	b := env.register(t, "bob")

	created, err := env.challengeSvc.Create(ctx, a.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.Code) != 8 {
		t.Fatalf("expected 8 char code, got %q", created.Code)
	}
	if created.Status != domain.StatusPending || len(created.Participants) != 1 {
		t.Fatalf("expected pending with inviter only, got %+v", created)
	}
	if created.Participants[0].UserID != a.ID || created.Participants[0].CompletedAt != nil {
		t.Fatalf("inviter must be participant[0] without completion, got %+v", created.Participants[0])
	}

	joined, err := env.challengeSvc.Join(ctx, created.Code, b.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Status != domain.StatusAccepted || len(joined.Participants) != 2 {
		t.Fatalf("expected accepted with 2 participants, got %+v", joined)
	}
	if joined.Participants[1].CompletedAt == nil || joined.Participants[0].CompletedAt != nil {
		t.Fatalf("unexpected completion times: %+v", joined.Participants)
	}

	updated, err := env.challengeSvc.UpdateScore(ctx, created.Code, a.ID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}
}

func TestJoinTwiceLeavesParticipantsUnchanged(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := env.register(t, "alice")
	b := env.register(t, "bob")

	created, err := env.challengeSvc.Create(ctx, a.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.challengeSvc.Join(ctx, created.Code, b.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := env.challengeSvc.Join(ctx, created.Code, b.ID); !errors.Is(err, domain.ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
	if _, err := env.challengeSvc.Join(ctx, created.Code, a.ID); !errors.Is(err, domain.ErrAlreadyJoined) {
		t.Fatalf("expected inviter join to fail, got %v", err)
	}

	got, err := env.challengeSvc.Get(ctx, created.Code)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(got.Participants))
	}
}

func TestUpdateScoreRequiresParticipant(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := env.register(t, "alice")
	c := env.register(t, "carol")

	created, err := env.challengeSvc.Create(ctx, a.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.challengeSvc.UpdateScore(ctx, created.Code, c.ID); !errors.Is(err, domain.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	if _, err := env.challengeSvc.UpdateScore(ctx, "deadbeef", a.ID); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestUpdateScoreSnapshotsLiveStats(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := env.register(t, "alice")
	paris, err := env.catalogSvc.Add(ctx, destination("Paris", domain.Europe, "France", "clue"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	created, err := env.challengeSvc.Create(ctx, a.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.game.SubmitAnswer(ctx, a.ID, paris.ID, "Paris"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.game.SubmitAnswer(ctx, a.ID, paris.ID, "Rome"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	updated, err := env.challengeSvc.UpdateScore(ctx, created.Code, a.ID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	p := updated.Participants[0]
	if p.Score != 10 || p.CorrectAnswers != 1 || p.IncorrectAnswers != 1 {
		t.Fatalf("expected live snapshot, got %+v", p)
	}
	if updated.InviterScore != 0 {
		t.Fatalf("inviter score snapshot must stay at creation value, got %d", updated.InviterScore)
	}
}

func TestStatusNeverMovesBackwards(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := env.register(t, "alice")
	b := env.register(t, "bob")
	d := env.register(t, "dave")

	created, _ := env.challengeSvc.Create(ctx, a.ID)
	if _, err := env.challengeSvc.Join(ctx, created.Code, b.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := env.challengeSvc.UpdateScore(ctx, created.Code, a.ID); err != nil {
		t.Fatalf("update: %v", err)
	}
	late, err := env.challengeSvc.Join(ctx, created.Code, d.ID)
	if err != nil {
		t.Fatalf("late join: %v", err)
	}
	if late.Status != domain.StatusCompleted {
		t.Fatalf("expected completed to stick, got %s", late.Status)
	}
}

func TestChallengeExpires(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := env.register(t, "alice")

	created, err := env.challengeSvc.Create(ctx, a.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.ExpiresAt.Equal(created.CreatedAt.Add(7 * 24 * time.Hour)) {
		t.Fatalf("expected 7 day expiry, got %s", created.ExpiresAt)
	}

	env.clock.Advance(7*24*time.Hour + time.Second)
	if _, err := env.challengeSvc.Get(ctx, created.Code); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected expired challenge to be gone, got %v", err)
	}
	purged, err := env.challenges.PurgeExpired(ctx)
	if err != nil || purged != 1 {
		t.Fatalf("expected 1 purged, got %d (%v)", purged, err)
	}
}

func TestSubscribeReceivesChallengeUpdates(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := env.register(t, "alice")
	b := env.register(t, "bob")

	created, err := env.challengeSvc.Create(ctx, a.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ch, cancel, err := env.challengeSvc.Subscribe(ctx, created.Code)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	initial := <-ch
	if initial.Status != domain.StatusPending {
		t.Fatalf("expected pending snapshot, got %s", initial.Status)
	}

	if _, err := env.challengeSvc.Join(ctx, created.Code, b.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	select {
	case update := <-ch:
		if update.Status != domain.StatusAccepted || len(update.Participants) != 2 {
			t.Fatalf("unexpected update: %+v", update)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for update")
	}

	if _, _, err := env.challengeSvc.Subscribe(ctx, "missing0"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
