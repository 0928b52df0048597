// Package notify fans a message out to many recipients concurrently while
// keeping each recipient's failure isolated from the others.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

var ErrNoRecipients = errors.New("no recipients")

type Recipient struct {
	Email string
	Name  string
}

// SendFunc delivers to one recipient.
type SendFunc func(ctx context.Context, to Recipient) error

type Failure struct {
	Recipient Recipient
	Err       error
}

type Result struct {
	Sent     int       `json:"sent"`
	Total    int       `json:"total"`
	Failures []Failure `json:"-"`
}

func (r Result) String() string {
	return fmt.Sprintf("%d of %d sent", r.Sent, r.Total)
}

// Options caps concurrency; zero or less means one goroutine per recipient.
type Options struct {
	Limit int
}

// Dispatch attempts exactly one send per recipient. A failed send never
// cancels the others; failures are collected in the result instead. Zero
// recipients returns ErrNoRecipients with an empty result.
func Dispatch(ctx context.Context, recipients []Recipient, send SendFunc, opts Options) (Result, error) {
	res := Result{Total: len(recipients)}
	if len(recipients) == 0 {
		return res, ErrNoRecipients
	}

	// plain Group, not WithContext: one failure must not cancel siblings
	var g errgroup.Group
	if opts.Limit > 0 {
		g.SetLimit(opts.Limit)
	}

	var mu sync.Mutex
	for _, rcpt := range recipients {
		rcpt := rcpt
		g.Go(func() error {
			err := send(ctx, rcpt)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failures = append(res.Failures, Failure{Recipient: rcpt, Err: err})
				return nil
			}
			res.Sent++
			return nil
		})
	}
	_ = g.Wait()
	return res, nil
}
