package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

const backend = "firestore"

type membershipRequestRepository struct {
	client     *firestore.Client
	collection string
}

func NewMembershipRequestRepository(client *firestore.Client, collection string) repository.MembershipRequestRepository {
	return &membershipRequestRepository{client: client, collection: collection}
}

func (r *membershipRequestRepository) col() *firestore.CollectionRef {
	return r.client.Collection(r.collection)
}

func (r *membershipRequestRepository) Create(ctx context.Context, req *domain.MembershipRequest) error {
	logger.StoreCall(backend, "Create", "user_id", req.UserID)

	blocking := statusStrings(domain.BlockingStatuses())
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		q := r.col().Where("userId", "==", req.UserID).Where("status", "in", blocking).Limit(1)
		docs, err := tx.Documents(q).GetAll()
		if err != nil {
			return fmt.Errorf("failed to query open requests: %w", err)
		}
		if len(docs) > 0 {
			return domain.ErrActiveRequestExists
		}
		return tx.Create(r.col().Doc(req.ID), req)
	})

	logger.StoreResult(backend, "Create", err, "request_id", req.ID)
	if errors.Is(err, domain.ErrActiveRequestExists) {
		return domain.ErrActiveRequestExists
	}
	return err
}

func (r *membershipRequestRepository) GetByID(ctx context.Context, id string) (*domain.MembershipRequest, error) {
	logger.StoreCall(backend, "GetByID", "request_id", id)

	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrNotFound
	}
	logger.StoreResult(backend, "GetByID", err, "request_id", id)
	if err != nil {
		return nil, err
	}
	return decode(snap)
}

func (r *membershipRequestRepository) Update(ctx context.Context, req *domain.MembershipRequest) error {
	logger.StoreCall(backend, "Update", "request_id", req.ID, "status", req.Status)

	_, err := r.col().Doc(req.ID).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(req.Status)},
		{Path: "adminNotes", Value: req.AdminNotes},
		{Path: "reviewedBy", Value: req.ReviewedBy},
		{Path: "inviteError", Value: req.InviteError},
		{Path: "updatedAt", Value: req.UpdatedAt},
		{Path: "reviewedAt", Value: req.ReviewedAt},
		{Path: "inviteSentAt", Value: req.InviteSentAt},
		{Path: "joinedAt", Value: req.JoinedAt},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrNotFound
	}
	logger.StoreResult(backend, "Update", err, "request_id", req.ID)
	return err
}

func (r *membershipRequestRepository) ListByUser(ctx context.Context, userID string) ([]domain.MembershipRequest, error) {
	logger.StoreCall(backend, "ListByUser", "user_id", userID)
	return r.list(ctx, r.col().Where("userId", "==", userID))
}

func (r *membershipRequestRepository) ListByStatus(ctx context.Context, statuses ...domain.MembershipStatus) ([]domain.MembershipRequest, error) {
	logger.StoreCall(backend, "ListByStatus", "statuses", statuses)

	q := r.col().Query
	if len(statuses) > 0 {
		q = q.Where("status", "in", statusStrings(statuses))
	}
	return r.list(ctx, q)
}

// list drains the query and sorts newest first in memory so no composite index is required.
func (r *membershipRequestRepository) list(ctx context.Context, q firestore.Query) ([]domain.MembershipRequest, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var reqs []domain.MembershipRequest
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			logger.StoreResult(backend, "List", err)
			return nil, err
		}
		req, err := decode(snap)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}

	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
	logger.StoreResult(backend, "List", nil, "count", len(reqs))
	return reqs, nil
}

func decode(snap *firestore.DocumentSnapshot) (*domain.MembershipRequest, error) {
	var req domain.MembershipRequest
	if err := snap.DataTo(&req); err != nil {
		return nil, fmt.Errorf("failed to decode membership request %s: %w", snap.Ref.ID, err)
	}
	req.ID = snap.Ref.ID
	return &req, nil
}

func statusStrings(statuses []domain.MembershipStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
