package i18n

import (
	"context"
	"fmt"
	"sync"
)

// State is the progress of a single locale resolution.
type State int

const (
	Unresolved State = iota
	Resolving
	Resolved
	NotFound
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	case NotFound:
		return "not_found"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Resolution tracks one request's locale token through loading.
// Resolve runs the load at most once; later calls return the same outcome.
type Resolution struct {
	r     *Resolver
	token string

	once  sync.Once
	mu    sync.Mutex
	state State
	tr    *Translator
	err   error
}

// Begin starts resolving token. Unsupported tokens are terminal immediately.
func (r *Resolver) Begin(token string) *Resolution {
	res := &Resolution{r: r, token: token}
	if !r.IsSupported(token) {
		res.state = NotFound
		res.err = fmt.Errorf("%w: %q", ErrUnsupportedLocale, token)
	}
	return res
}

// Token returns the requested locale token.
func (res *Resolution) Token() string { return res.token }

// State reports the current state.
func (res *Resolution) State() State {
	res.mu.Lock()
	defer res.mu.Unlock()
	return res.state
}

// Resolve loads the bundle and returns a translator, or ErrUnsupportedLocale.
// A failed load leaves the resolution Unresolved so the caller may surface it.
func (res *Resolution) Resolve(ctx context.Context) (*Translator, error) {
	res.once.Do(func() {
		res.mu.Lock()
		if res.state == NotFound {
			res.mu.Unlock()
			return
		}
		res.state = Resolving
		res.mu.Unlock()

		tr, err := res.r.translator(ctx, res.token)

		res.mu.Lock()
		defer res.mu.Unlock()
		if err != nil {
			res.state = Unresolved
			res.err = err
			return
		}
		res.state = Resolved
		res.tr = tr
	})
	res.mu.Lock()
	defer res.mu.Unlock()
	return res.tr, res.err
}
