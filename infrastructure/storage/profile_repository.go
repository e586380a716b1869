//go:generate go run go.uber.org/mock/mockgen -source=profile_repository.go -destination=../../mocks/mock_profile_repository.go -package=mocks
package storage

import (
	"bytes"
	"dm-lab/domain/messaging"
	stderrors "errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// IProfileRepository is the local copy of the participant directory.
// It is filled from authenticated identities and only used for display.
type IProfileRepository interface {
	Upsert(profile messaging.Profile) error
	GetProfiles(participantIDs []string) (map[string]messaging.Profile, error)
}

type ProfileRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewProfileRepository(db *badger.DB, log *slog.Logger) *ProfileRepository {
	return &ProfileRepository{db: db, log: log}
}

// Upsert skips the write when the stored profile is already identical,
// since it runs on every authenticated request.
func (r *ProfileRepository) Upsert(profile messaging.Profile) error {
	encoded := encodeProfile(profile)
	key := profileKey(profile.ParticipantID)

	unchanged := false
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			unchanged = bytes.Equal(val, encoded)
			return nil
		})
	})
	if err != nil || unchanged {
		return err
	}
	if err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, encoded)
	}); err != nil {
		return err
	}
	r.log.Debug("Profile stored", "participant_id", profile.ParticipantID)
	return nil
}

// GetProfiles returns the known profiles. Unknown participants are absent from the map.
func (r *ProfileRepository) GetProfiles(participantIDs []string) (map[string]messaging.Profile, error) {
	profiles := make(map[string]messaging.Profile, len(participantIDs))
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range participantIDs {
			item, err := txn.Get(profileKey(id))
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				profile, err := decodeProfile(id, val)
				if err != nil {
					return err
				}
				profiles[id] = profile
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return profiles, err
}
