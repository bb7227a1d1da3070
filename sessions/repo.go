package sessions

import "context"

// Repo stores sessions keyed by session id
type Repo interface {
	Upsert(ctx context.Context, session Session) error
	Get(ctx context.Context, sessionID string) (Session, error)
	Delete(ctx context.Context, sessionID string) error
}
