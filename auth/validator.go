package auth

import (
	"dm-lab/domain/messaging"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Identity is the authenticated caller as resolved from a bearer token.
type Identity struct {
	ParticipantID string `validate:"required,max=128,printascii,excludes=:"`
	DisplayName   string `validate:"max=128"`
	Role          string `validate:"max=64"`
	AvatarURL     string `validate:"omitempty,url,max=2048"`
}

func ValidateIdentity(identity Identity) error {
	return validate.Struct(identity)
}

// Profile is what the directory keeps from an identity.
func (i Identity) Profile() messaging.Profile {
	return messaging.Profile{
		ParticipantID: i.ParticipantID,
		DisplayName:   i.DisplayName,
		Role:          i.Role,
		AvatarURL:     i.AvatarURL,
	}
}
