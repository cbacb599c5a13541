package repokit

import (
	"context"
	"fmt"
)

// MustGuard panics when the store's startup guard fails
func MustGuard(ctx context.Context, st interface{ Guard(context.Context) error }) {
	if err := st.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
