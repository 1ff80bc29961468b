package ports

import "context"

// PollTrigger — запрос внепланового цикла опроса (после смены статуса,
// по событию из Kafka). Вызов вне очереди не сдвигает плановый период.
type PollTrigger interface {
	PollNow(ctx context.Context) error
}
