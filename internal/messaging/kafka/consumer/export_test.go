package consumer

import "time"

func SetRetryBackoff(base, ceiling time.Duration) func() {
	prevBase, prevMax := retryBackoff, retryBackoffMax
	retryBackoff, retryBackoffMax = base, ceiling
	return func() { retryBackoff, retryBackoffMax = prevBase, prevMax }
}
