//go:generate go run go.uber.org/mock/mockgen -source=joke.go -destination=../mocks/mock_joke_source.go -package=mocks

package chat

import "context"

// JokeSource supplies short plain-text jokes. FetchJoke may block on the
// network and may fail; callers do not retry.
type JokeSource interface {
	FetchJoke(ctx context.Context) (string, error)
}
