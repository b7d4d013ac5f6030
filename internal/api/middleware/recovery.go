package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/bazaar-shop/marketplace/internal/api/types"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
	"github.com/bazaar-shop/marketplace/pkg/logger"
)

// Recovery logs panics and answers 500 with the failure envelope.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.L().Error("panic recovered",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			types.WriteError(w, appErr.Wrap(fmt.Errorf("%v", rec), appErr.CodeInternal, "panic"))
		}()
		next.ServeHTTP(w, r)
	})
}
