package fiscal

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// StaticAuthorizer grants authorizations locally. It backs development and
// demo environments where no gateway credentials exist.
type StaticAuthorizer struct {
	seq atomic.Int64
}

// NewStaticAuthorizer constructs a local authorizer.
func NewStaticAuthorizer() *StaticAuthorizer {
	return &StaticAuthorizer{}
}

// Authorize grants a deterministic authorization valid for ten days.
func (s *StaticAuthorizer) Authorize(_ context.Context, req Request) (*Authorization, error) {
	n := s.seq.Add(1)
	number := req.Number
	if number == "" {
		number = fmt.Sprintf("%08d", n)
	}
	return &Authorization{
		Code:   fmt.Sprintf("70%012d", n),
		Expiry: req.IssueDate.Add(10 * 24 * time.Hour),
		Number: number,
	}, nil
}
