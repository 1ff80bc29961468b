// Пакет ctxmeta — нейтральный слой для метаданных, прокидываемых через
// context.Context (request_id HTTP-запроса, cycle_id цикла опроса и т.д.).
// Идея: транспорт, поллер и логгер зависят от небольшого общего пакета,
// но не друг от друга.
package ctxmeta

import "context"

type ctxKey string

const (
	// Ключи контекста (собственный тип — чтобы избежать коллизий).
	KeyRequestID ctxKey = "request_id"
	KeyCycleID   ctxKey = "cycle_id"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, KeyRequestID)
}

// WithCycleID кладёт идентификатор цикла опроса в контекст.
// Все записи логов одного цикла помечаются одним cycle_id.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	if ctx == nil || cycleID == "" {
		return ctx
	}
	return context.WithValue(ctx, KeyCycleID, cycleID)
}

// CycleIDFromContext достаёт cycle_id из контекста.
func CycleIDFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, KeyCycleID)
}

func stringFromContext(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
