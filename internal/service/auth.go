package service

import "context"

// StaticAuthenticator answers the login gate from a fixed allow-list of chat
// ids. Real authentication happens outside the bot; this is the local stand-in
// the review form consults before submitting.
type StaticAuthenticator struct {
	allowed map[int64]bool
}

func NewStaticAuthenticator(ids []int64) *StaticAuthenticator {
	allowed := make(map[int64]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	return &StaticAuthenticator{allowed: allowed}
}

func (a *StaticAuthenticator) IsAuthenticated(_ context.Context, chatID int64) bool {
	return a.allowed[chatID]
}
