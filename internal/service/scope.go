package service

import "github.com/google/uuid"

// Scope is resolved once per request and passed to every operation.
// TenantID filters every read and write; Actor (the verified email) is
// recorded in the audit columns.
type Scope struct {
	TenantID uuid.UUID
	Actor    string
}

func (s Scope) valid() error {
	if s.TenantID == uuid.Nil {
		return ErrNoAssociation
	}
	return nil
}
