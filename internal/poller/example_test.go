package poller_test

import (
	"context"
	"time"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/poller"
)

// A chat client keeps its conversation list current by embedding a Poller
// around its fetch call. Cancelling the context stops the refresh loop.
func Example() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresh := poller.New("conversations", 5*time.Second, func(ctx context.Context) error {
		// GET /api/chat/conversations and repaint the partner list.
		return nil
	})
	refresh.Start(ctx)

	// ... the client runs until it is closed, then cancels ctx.
}
