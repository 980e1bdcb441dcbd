package ports

import "github.com/fixora/fieldreports/internal/domain"

// TokenService issues and validates bearer tokens carrying a session
type TokenService interface {
	Issue(session domain.Session) (string, error)
	Validate(token string) (*domain.Session, error)
}
