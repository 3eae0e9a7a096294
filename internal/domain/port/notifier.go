package port

import "context"

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, email, jobID, mediaID, errorMsg string) error
}
