// internal/app/guard.go
package app

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/dom"
)

// guard runs user code. A panic is logged with its stack and fallback is
// returned in place of the result.
func guard[T any](logger *zap.Logger, callback string, fallback T, fn func() T, fields ...zap.Field) (out T) {
	defer func() {
		if r := recover(); r != nil {
			fields = append(fields,
				zap.String("callback", callback),
				zap.Any("panic", r),
				zap.Stack("stack"))
			logger.Error("Recovered from panic in user callback.", fields...)
			out = fallback
		}
	}()
	return fn()
}

func (a *App) callLayout(info LayoutInfo) *dom.Dom {
	return guard(a.logger, "layout", (*dom.Dom)(nil), func() *dom.Dom {
		return a.layout(a.data, info)
	})
}

func (w *Window) callIFrame(host dom.DomNodeId, node *dom.IFrameNode, info dom.IFrameCallbackInfo) dom.IFrameCallbackReturn {
	return guard(w.logger, "iframe", dom.IFrameCallbackReturn{}, func() dom.IFrameCallbackReturn {
		return node.Callback(node.Data, info)
	}, zap.Stringer("host", host), zap.Stringer("reason", info.Reason))
}

func (w *Window) callHandler(cb dom.CallbackData, info *callbackInfo) dom.Update {
	return guard(w.logger, "event", dom.UpdateDoNothing, func() dom.Update {
		return cb.Callback(cb.Data, info)
	}, zap.Stringer("node", info.hit), zap.Stringer("event", info.event))
}
