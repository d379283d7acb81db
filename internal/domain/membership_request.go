package domain

import "time"

type MembershipStatus string

const (
	MembershipStatusPending        MembershipStatus = "pending"
	MembershipStatusApproved       MembershipStatus = "approved"
	MembershipStatusDenied         MembershipStatus = "denied"
	MembershipStatusInviteSent     MembershipStatus = "invite-sent"
	MembershipStatusAlreadyMember  MembershipStatus = "already-member"
	MembershipStatusAlreadyInvited MembershipStatus = "already-invited"
	MembershipStatusJoined         MembershipStatus = "joined"
)

// AllMembershipStatuses lists every status in lifecycle order
var AllMembershipStatuses = []MembershipStatus{
	MembershipStatusPending,
	MembershipStatusApproved,
	MembershipStatusDenied,
	MembershipStatusInviteSent,
	MembershipStatusAlreadyMember,
	MembershipStatusAlreadyInvited,
	MembershipStatusJoined,
}

// transitions holds every allowed status change. Re-entering approved
// records a failed invite retry.
var transitions = map[MembershipStatus][]MembershipStatus{
	MembershipStatusPending: {
		MembershipStatusApproved,
		MembershipStatusDenied,
		MembershipStatusInviteSent,
		MembershipStatusAlreadyMember,
		MembershipStatusAlreadyInvited,
	},
	MembershipStatusApproved: {
		MembershipStatusApproved,
		MembershipStatusDenied,
		MembershipStatusInviteSent,
		MembershipStatusAlreadyMember,
		MembershipStatusAlreadyInvited,
		MembershipStatusJoined,
	},
	MembershipStatusInviteSent:     {MembershipStatusJoined},
	MembershipStatusAlreadyInvited: {MembershipStatusJoined},
	MembershipStatusAlreadyMember:  {MembershipStatusJoined},
}

// ParseMembershipStatus validates a status string
func ParseMembershipStatus(s string) (MembershipStatus, bool) {
	for _, st := range AllMembershipStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// CanTransition reports whether a request may move from one status to another
func CanTransition(from, to MembershipStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsActive reports whether the status counts as the user's single open request
func (s MembershipStatus) IsActive() bool {
	switch s {
	case MembershipStatusPending, MembershipStatusApproved, MembershipStatusInviteSent:
		return true
	}
	return false
}

// IsPollable reports whether the poller should keep checking GitHub for this status
func (s MembershipStatus) IsPollable() bool {
	switch s {
	case MembershipStatusInviteSent, MembershipStatusAlreadyInvited, MembershipStatusApproved:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves the status
func (s MembershipStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsReviewable reports whether an admin may approve or deny the request
func (s MembershipStatus) IsReviewable() bool {
	return s == MembershipStatusPending || s == MembershipStatusApproved
}

// BlocksNewRequest reports whether a request in this status prevents the user
// from submitting another one. Only denied requests free the user.
func (s MembershipStatus) BlocksNewRequest() bool {
	return s != MembershipStatusDenied
}

// PollableStatuses returns the statuses watched by the poller
func PollableStatuses() []MembershipStatus {
	var out []MembershipStatus
	for _, s := range AllMembershipStatuses {
		if s.IsPollable() {
			out = append(out, s)
		}
	}
	return out
}

// BlockingStatuses returns the statuses that prevent a new submission
func BlockingStatuses() []MembershipStatus {
	var out []MembershipStatus
	for _, s := range AllMembershipStatuses {
		if s.BlocksNewRequest() {
			out = append(out, s)
		}
	}
	return out
}

type MembershipRequest struct {
	ID             string           `json:"id" firestore:"-"`
	UserID         string           `json:"userId" firestore:"userId"`
	UserEmail      string           `json:"userEmail" firestore:"userEmail"`
	GitHubUsername string           `json:"githubUsername" firestore:"githubUsername"`
	Note           string           `json:"note,omitempty" firestore:"note"`
	Status         MembershipStatus `json:"status" firestore:"status"`
	AdminNotes     string           `json:"adminNotes,omitempty" firestore:"adminNotes"`
	ReviewedBy     string           `json:"reviewedBy,omitempty" firestore:"reviewedBy"`
	InviteError    string           `json:"inviteError,omitempty" firestore:"inviteError"`
	CreatedAt      time.Time        `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt" firestore:"updatedAt"`
	ReviewedAt     *time.Time       `json:"reviewedAt,omitempty" firestore:"reviewedAt"`
	InviteSentAt   *time.Time       `json:"inviteSentAt,omitempty" firestore:"inviteSentAt"`
	JoinedAt       *time.Time       `json:"joinedAt,omitempty" firestore:"joinedAt"`
}

// Transition moves the request to the next status and stamps the
// matching one-shot timestamp. It refuses transitions the lifecycle does not allow.
func (r *MembershipRequest) Transition(to MembershipStatus, now time.Time) error {
	if !CanTransition(r.Status, to) {
		return &TransitionError{From: r.Status, To: to}
	}
	r.Status = to
	r.UpdatedAt = now
	if to != MembershipStatusApproved {
		r.InviteError = ""
	}
	switch to {
	case MembershipStatusInviteSent:
		if r.InviteSentAt == nil {
			r.InviteSentAt = &now
		}
	case MembershipStatusJoined:
		if r.JoinedAt == nil {
			r.JoinedAt = &now
		}
	}
	return nil
}

// MarkReviewed records the reviewing admin; the review time is kept from the first review.
func (r *MembershipRequest) MarkReviewed(adminID, adminNotes string, now time.Time) {
	r.ReviewedBy = adminID
	if adminNotes != "" {
		r.AdminNotes = adminNotes
	}
	if r.ReviewedAt == nil {
		r.ReviewedAt = &now
	}
}

// MembershipState is the organization membership of a GitHub user as observed
// through the GitHub API.
type MembershipState string

const (
	MembershipStateActive  MembershipState = "active"
	MembershipStatePending MembershipState = "pending"
	MembershipStateNone    MembershipState = "none"
)
