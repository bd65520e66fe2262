package handlers

import (
	"fmt"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/adapters/persistence/repositories"
	"orderdesk-api/internal/core/domain"
	"orderdesk-api/internal/core/services"
)

// UserPolicy limits user item routes to the user itself and admins.
// Only admins assign roles.
func UserPolicy() Policy[models.User] {
	return Policy[models.User]{
		Owner: func(u *models.User) *uint {
			return &u.ID
		},
		Prepare: func(session *services.Session, data repositories.Payload, _ bool) (repositories.Payload, error) {
			if _, ok := data[repositories.FieldRoleIDs]; ok && (session == nil || !session.IsAdmin()) {
				return nil, fmt.Errorf("%w: only admins assign roles", domain.ErrForbidden)
			}
			return data, nil
		},
	}
}

// OrderPolicy limits orders to their owner and admins. Orders created by
// a non-admin always belong to them.
func OrderPolicy() Policy[models.Order] {
	return Policy[models.Order]{
		Owner: func(o *models.Order) *uint {
			return o.UserID
		},
		OwnerField: "userId",
		Prepare: func(session *services.Session, data repositories.Payload, creating bool) (repositories.Payload, error) {
			if session == nil {
				return nil, domain.ErrUnauthorized
			}
			if session.IsAdmin() {
				return data, nil
			}

			if v, ok := data["userId"]; ok && !creating {
				if id, valid := repositories.ParseID(v); !valid || id != session.UserID() {
					return nil, fmt.Errorf("%w: orders cannot be handed to another user", domain.ErrForbidden)
				}
			}

			out := make(repositories.Payload, len(data)+1)
			for k, v := range data {
				out[k] = v
			}
			if creating {
				out["userId"] = session.UserID()
			}
			return out, nil
		},
	}
}
