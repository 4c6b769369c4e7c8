// Package taskgroup runs a set of independent tasks concurrently and joins on
// all of them. Generated shader packages use it to initialize every shader
// object at once.
//
// Unlike errgroup, a failing task never cancels its siblings: Wait returns
// only after every task has finished, and it reports all failures together.
package taskgroup

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Group is a collection of tasks started with Go. The zero value is not
// usable; create groups with New.
type Group struct {
	ctx context.Context
	wg  sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// New returns a group whose tasks receive ctx.
func New(ctx context.Context) *Group {
	return &Group{ctx: ctx}
}

// Go starts fn in its own goroutine.
func (g *Group) Go(fn func(context.Context) error) {
	g.mu.Lock()
	slot := len(g.errs)
	g.errs = append(g.errs, nil)
	g.mu.Unlock()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		err := g.run(fn)
		g.mu.Lock()
		g.errs[slot] = err
		g.mu.Unlock()
	}()
}

func (g *Group) run(fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("taskgroup: task panicked: %v", r)
		}
	}()
	return fn(g.ctx)
}

// Wait blocks until every task has returned. It returns the errors of all
// failed tasks joined in the order the tasks were started, or nil.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
