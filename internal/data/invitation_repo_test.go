package data

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/domain/model"
	"github.com/equihire/equihire-core/internal/testutil"
)

func TestInvitationRepo_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := testutil.SetupTestDB(t)
	clock := NewFixedTimeProvider(testutil.TestTime())
	orgs := NewOrganizationRepoWithTimeProvider(db, clock)
	repo := NewInvitationRepoWithTimeProvider(db, clock)
	ctx := context.Background()

	org, err := orgs.Create(ctx, testutil.NewOrganizationRequest().Build())
	require.NoError(t, err)

	inv, err := repo.Create(ctx, &model.CreateInvitationRequest{
		OrganizationID: org.ID,
		Email:          " Candidate@Example.com ",
		CreatedBy:      org.CreatedBy,
	}, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "candidate@example.com", inv.Email)
	assert.Equal(t, model.InvitationStatusPending, inv.Status)
	assert.Nil(t, inv.SentAt)

	sentAt := testutil.TestTime().Add(time.Minute)
	require.NoError(t, repo.MarkSent(ctx, inv.ID, sentAt))

	got, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, model.InvitationStatusSent, got.Status)
	require.NotNil(t, got.SentAt)
	assert.True(t, got.SentAt.Equal(sentAt))

	require.NoError(t, repo.MarkFailed(ctx, inv.ID, strings.Repeat("x", 600)))
	got, err = repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, model.InvitationStatusFailed, got.Status)
	require.NotNil(t, got.LastError)
	assert.Len(t, *got.LastError, 500)

	_, err = repo.Create(ctx, &model.CreateInvitationRequest{
		OrganizationID: org.ID,
		Email:          "other@example.com",
		CreatedBy:      org.CreatedBy,
	}, "tok-1")
	require.ErrorIs(t, err, ErrInvitationTokenCollision)
}

func TestInvitationRepo_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo := NewInvitationRepo(testutil.SetupTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByToken(ctx, "missing")
	require.ErrorIs(t, err, core.ErrInvitationNotFound)

	_, err = repo.GetByToken(ctx, "")
	require.ErrorIs(t, err, core.ErrInvitationNotFound)

	err = repo.MarkSent(ctx, uuid.NewString(), time.Now())
	require.ErrorIs(t, err, core.ErrInvitationNotFound)
}

func TestInvitationRepo_ListRecent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := testutil.SetupTestDB(t)
	clock := NewFixedTimeProvider(testutil.TestTime())
	orgs := NewOrganizationRepoWithTimeProvider(db, clock)
	repo := NewInvitationRepoWithTimeProvider(db, clock)
	ctx := context.Background()

	org, err := orgs.Create(ctx, testutil.NewOrganizationRequest().Build())
	require.NoError(t, err)
	other, err := orgs.Create(ctx, testutil.NewOrganizationRequest().Build())
	require.NoError(t, err)

	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		clock.Advance(time.Minute)
		_, err := repo.Create(ctx, &model.CreateInvitationRequest{
			OrganizationID: org.ID, Email: email, CreatedBy: org.CreatedBy,
		}, uuid.NewString())
		require.NoError(t, err, "invite %d", i)
	}
	_, err = repo.Create(ctx, &model.CreateInvitationRequest{
		OrganizationID: other.ID, Email: "z@example.com", CreatedBy: other.CreatedBy,
	}, uuid.NewString())
	require.NoError(t, err)

	list, err := repo.ListRecent(ctx, org.ID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c@example.com", list[0].Email)
	assert.Equal(t, "b@example.com", list[1].Email)
}

func TestInvitationRepo_CreateValidation(t *testing.T) {
	repo := NewInvitationRepo(nil)
	ctx := context.Background()

	_, err := repo.Create(ctx, nil, "tok")
	require.ErrorIs(t, err, ErrRequestRequired)

	_, err = repo.Create(ctx, &model.CreateInvitationRequest{
		OrganizationID: "org", Email: "not-an-email", CreatedBy: "u",
	}, "tok")
	require.Error(t, err)

	_, err = repo.Create(ctx, &model.CreateInvitationRequest{
		OrganizationID: "org", Email: "ok@example.com", CreatedBy: "u",
	}, "")
	require.Error(t, err)
}
