package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to MembershipStatus
		want     bool
	}{
		{MembershipStatusPending, MembershipStatusApproved, true},
		{MembershipStatusPending, MembershipStatusDenied, true},
		{MembershipStatusPending, MembershipStatusAlreadyMember, true},
		{MembershipStatusPending, MembershipStatusJoined, false},
		{MembershipStatusApproved, MembershipStatusInviteSent, true},
		{MembershipStatusApproved, MembershipStatusApproved, true},
		{MembershipStatusApproved, MembershipStatusJoined, true},
		{MembershipStatusInviteSent, MembershipStatusJoined, true},
		{MembershipStatusInviteSent, MembershipStatusDenied, false},
		{MembershipStatusAlreadyInvited, MembershipStatusJoined, true},
		{MembershipStatusAlreadyMember, MembershipStatusJoined, true},
		{MembershipStatusDenied, MembershipStatusPending, false},
		{MembershipStatusJoined, MembershipStatusJoined, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatusSets(t *testing.T) {
	assert.ElementsMatch(t,
		[]MembershipStatus{MembershipStatusInviteSent, MembershipStatusAlreadyInvited, MembershipStatusApproved},
		PollableStatuses())

	assert.True(t, MembershipStatusPending.IsActive())
	assert.True(t, MembershipStatusApproved.IsActive())
	assert.True(t, MembershipStatusInviteSent.IsActive())
	assert.False(t, MembershipStatusAlreadyInvited.IsActive())

	assert.True(t, MembershipStatusDenied.IsTerminal())
	assert.True(t, MembershipStatusJoined.IsTerminal())
	assert.False(t, MembershipStatusAlreadyMember.IsTerminal())

	assert.NotContains(t, BlockingStatuses(), MembershipStatusDenied)
	assert.Len(t, BlockingStatuses(), len(AllMembershipStatuses)-1)
}

func TestParseMembershipStatus(t *testing.T) {
	st, ok := ParseMembershipStatus("invite-sent")
	assert.True(t, ok)
	assert.Equal(t, MembershipStatusInviteSent, st)

	_, ok = ParseMembershipStatus("INVITED")
	assert.False(t, ok)
}

func TestTransition_StampsOnce(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	req := &MembershipRequest{Status: MembershipStatusApproved, InviteError: "rate limited"}
	require.NoError(t, req.Transition(MembershipStatusInviteSent, t0))
	assert.Equal(t, t0, *req.InviteSentAt)
	assert.Empty(t, req.InviteError)

	require.NoError(t, req.Transition(MembershipStatusJoined, t1))
	assert.Equal(t, t1, *req.JoinedAt)
	assert.Equal(t, t0, *req.InviteSentAt)
	assert.Equal(t, t1, req.UpdatedAt)
}

func TestTransition_Rejected(t *testing.T) {
	req := &MembershipRequest{Status: MembershipStatusJoined}
	err := req.Transition(MembershipStatusDenied, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, MembershipStatusJoined, req.Status)
}

func TestMarkReviewed_KeepsFirstReviewTime(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	req := &MembershipRequest{}
	req.MarkReviewed("admin-1", "looks good", t0)
	req.MarkReviewed("admin-2", "", t0.Add(time.Hour))

	assert.Equal(t, t0, *req.ReviewedAt)
	assert.Equal(t, "admin-2", req.ReviewedBy)
	assert.Equal(t, "looks good", req.AdminNotes)
}
