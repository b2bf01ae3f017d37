package middlewares

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/royalton/portal/internal"
)

const defaultStackSize = 8 << 10

// PanicError is returned by Recover in place of a panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Recover converts a panic in next into a *PanicError and logs its stack.
func Recover() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				stack := make([]byte, defaultStackSize)
				stack = stack[:runtime.Stack(stack, false)]
				c.LogError("panic recovered",
					slog.Any("panic", r),
					slog.String("stack", string(stack)),
				)
				err = &PanicError{Value: r, Stack: stack}
			}()
			return next(c)
		}
	}
}
