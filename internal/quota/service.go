package quota

import "context"

// Service gates chat turns behind the monthly allowance.
type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// UseTurn deducts one turn from userID's monthly allowance, initializing
// the row on first use. Returns ErrExhausted once the month's allowance is
// spent.
func (s *Service) UseTurn(ctx context.Context, userID string) error {
	err := s.store.UseTurn(ctx, userID)
	if err != ErrExhausted {
		return err
	}

	created, err := s.store.EnsureUser(ctx, userID)
	if err != nil {
		return err
	}
	if !created {
		// Row already existed: the month's allowance is genuinely spent.
		return ErrExhausted
	}
	return s.store.UseTurn(ctx, userID)
}
