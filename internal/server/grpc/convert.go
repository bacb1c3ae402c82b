package grpc

import (
	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

func userToAPI(u *models.User) *api.User {
	if u == nil {
		return nil
	}
	return &api.User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Image:         u.Image,
		CreatedAt:     u.CreatedAt,
	}
}

// sessionToAPI includes the bearer token only when withToken is set.
func sessionToAPI(s *models.Session, withToken bool) *api.Session {
	if s == nil {
		return nil
	}
	out := &api.Session{
		ID:        s.ID,
		UserID:    s.UserID,
		ExpiresAt: s.ExpiresAt,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		CreatedAt: s.CreatedAt,
	}
	if withToken {
		out.Token = s.Token
	}
	return out
}

func authToAPI(r *services.AuthResult) *api.AuthResponse {
	return &api.AuthResponse{User: userToAPI(r.User), Session: sessionToAPI(r.Session, true)}
}

func ceremonyToAPI(c *services.Ceremony) *api.CeremonyResponse {
	return &api.CeremonyResponse{Handle: c.Handle, Options: c.Options}
}

func credentialToAPI(a *models.Account) *api.Credential {
	return &api.Credential{
		ID:        a.ID,
		Provider:  a.ProviderID,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
	}
}
