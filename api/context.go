package api

import (
	"context"
	"net/http"
)

type keyType string

const sessionKey keyType = "session"

// ctxWithSession adds the request session to the context
func ctxWithSession(ctx context.Context, sess *session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// ctxGetSession retrieves the request session from the context
func ctxGetSession(ctx context.Context) (*session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session)
	return sess, ok && sess != nil
}

// sessionFromRequest returns the request session, or a detached empty one
// when the session middleware did not run.
func sessionFromRequest(r *http.Request) *session {
	if sess, ok := ctxGetSession(r.Context()); ok {
		return sess
	}
	return &session{}
}
