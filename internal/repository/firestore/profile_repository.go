package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/befriend-app/befriend-backend/internal/repository"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	UsersCollection = "users"

	// extra documents read past the limit to make up for the excluded uid
	candidateSlack = 30
)

type profileRepository struct {
	client *firestore.Client
}

func NewProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) users() *firestore.CollectionRef {
	return r.client.Collection(UsersCollection)
}

func (r *profileRepository) GetByUID(ctx context.Context, uid string) (*domain.Profile, error) {
	snap, err := r.users().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get user document: %w", err)
	}
	return docToProfile(snap.Ref.ID, snap.Data()), nil
}

func (r *profileRepository) Merge(ctx context.Context, uid string, patch *domain.ProfilePatch) (*domain.Profile, error) {
	ref := r.users().Doc(uid)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		exists := true
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return err
			}
			exists = false
		} else {
			exists = snap.Exists()
		}
		return tx.Set(ref, patchToFields(uid, patch, !exists), firestore.MergeAll)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to merge user document: %w", err)
	}

	return r.GetByUID(ctx, uid)
}

func (r *profileRepository) ListCandidates(ctx context.Context, excludeUID string, limit int) ([]*domain.Profile, error) {
	iter := r.users().
		Where("onboarded", "==", true).
		Limit(limit + candidateSlack).
		Documents(ctx)
	defer iter.Stop()

	return collectCandidates(func() (string, map[string]interface{}, error) {
		snap, err := iter.Next()
		if err != nil {
			return "", nil, err
		}
		return snap.Ref.ID, snap.Data(), nil
	}, excludeUID, limit)
}

// nextDoc yields the id and data of the next document, or iterator.Done.
type nextDoc func() (string, map[string]interface{}, error)

// collectCandidates reads until limit onboarded profiles other than excludeUID are found.
func collectCandidates(next nextDoc, excludeUID string, limit int) ([]*domain.Profile, error) {
	out := make([]*domain.Profile, 0, max(limit, 0))
	for len(out) < limit {
		id, data, err := next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list user documents: %w", err)
		}
		profile := docToProfile(id, data)
		if profile.UID == excludeUID || !profile.Onboarded {
			continue
		}
		out = append(out, profile)
	}
	return out, nil
}

// patchToFields builds the MergeAll payload. Timestamps are server-assigned.
func patchToFields(uid string, patch *domain.ProfilePatch, create bool) map[string]interface{} {
	fields := map[string]interface{}{
		"uid":       uid,
		"updatedAt": firestore.ServerTimestamp,
	}
	if create {
		fields["createdAt"] = firestore.ServerTimestamp
	}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Program != nil {
		fields["program"] = *patch.Program
	}
	if patch.Clubs != nil {
		fields["clubs"] = *patch.Clubs
	}
	if patch.Interests != nil {
		fields["interests"] = *patch.Interests
	}
	if patch.Accommodations != nil {
		fields["accommodations"] = *patch.Accommodations
	}
	if patch.PhotoURL != nil {
		fields["photoURL"] = *patch.PhotoURL
	}
	if patch.Onboarded != nil {
		fields["onboarded"] = *patch.Onboarded
	}
	return fields
}

// docToProfile reads loosely typed documents written by older clients.
// The document id wins when the uid field is missing.
func docToProfile(id string, data map[string]interface{}) *domain.Profile {
	profile := &domain.Profile{
		UID:            stringField(data, "uid"),
		Name:           stringField(data, "name"),
		Program:        stringField(data, "program"),
		Clubs:          stringField(data, "clubs"),
		Interests:      stringField(data, "interests"),
		Accommodations: stringField(data, "accommodations"),
		PhotoURL:       stringField(data, "photoURL"),
		CreatedAt:      timeField(data, "createdAt"),
		UpdatedAt:      timeField(data, "updatedAt"),
	}
	if profile.UID == "" {
		profile.UID = id
	}
	// only an explicit true counts as onboarded
	if b, ok := data["onboarded"].(bool); ok {
		profile.Onboarded = b
	}
	return profile
}

func stringField(data map[string]interface{}, key string) string {
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func timeField(data map[string]interface{}, key string) time.Time {
	if t, ok := data[key].(time.Time); ok {
		return t
	}
	return time.Time{}
}
