package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rknpizza/counterboard/internal/domain"
	"github.com/rknpizza/counterboard/internal/ports"
)

// Ошибки перехода статуса; транспорт маппит их в коды ответов.
var (
	// ErrInvalidStatus — целевой статус вне закрытого множества.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrChecklistIncomplete — попытка завершить заказ с неполным чек-листом.
	ErrChecklistIncomplete = errors.New("checklist incomplete")
)

// BoardService — прикладная логика доски: гейт чек-листа и перевод
// статуса на стороне источника (без знаний о транспорте).
type BoardService struct {
	source    ports.OrderSource     // удалённый источник заказов
	checklist ports.ChecklistStore  // флаги «приготовлено»
	pruner    ports.ChecklistPruner // nil, если хранилище не чистит завершённые
	trigger   ports.PollTrigger     // внеплановый опрос после успешного перехода
	log       ports.Logger
}

// NewBoardService — DI-конструктор. pruner допускает nil.
func NewBoardService(
	source ports.OrderSource,
	checklist ports.ChecklistStore,
	pruner ports.ChecklistPruner,
	trigger ports.PollTrigger,
	log ports.Logger,
) *BoardService {
	return &BoardService{
		source:    source,
		checklist: checklist,
		pruner:    pruner,
		trigger:   trigger,
		log:       log,
	}
}

// CanComplete — готов ли заказ к выдаче. Гейт действует только на статусе
// in_preparation; на остальных переход не ограничен. Невиданный ключ
// читается как false, то есть закрывает гейт.
func (s *BoardService) CanComplete(ctx context.Context, order *domain.Order) (bool, error) {
	if order.Status != domain.StatusInPreparation {
		return true, nil
	}
	for i := range order.Items {
		checked, err := s.checklist.Get(ctx, order.ID, order.Items[i].ChecklistKey())
		if err != nil {
			return false, fmt.Errorf("чтение чек-листа заказа %d: %w", order.ID, err)
		}
		if !checked {
			return false, nil
		}
	}
	return true, nil
}

// ToggleChecked — переключить флаг позиции. Возвращает новое значение.
func (s *BoardService) ToggleChecked(ctx context.Context, orderID int64, key string) (bool, error) {
	return s.checklist.Toggle(ctx, orderID, key)
}

// Checked — все флаги заказа.
func (s *BoardService) Checked(ctx context.Context, orderID int64) (map[string]bool, error) {
	return s.checklist.Checked(ctx, orderID)
}

// Transition — перевод заказа в newStatus на стороне источника.
// Порядок проверок жёсткий: сначала локальные (статус, гейт чек-листа),
// и только потом сетевой вызов — при локальном отказе источник не трогаем.
// Успех завершается внеплановым опросом: доска не патчится руками,
// данные всегда приезжают от владельца.
func (s *BoardService) Transition(ctx context.Context, order *domain.Order, newStatus domain.Status) (*domain.Order, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	if order.Status == domain.StatusInPreparation && newStatus == domain.StatusCompleted {
		ready, err := s.CanComplete(ctx, order)
		if err != nil {
			return nil, err
		}
		if !ready {
			return nil, fmt.Errorf("%w: заказ %d", ErrChecklistIncomplete, order.ID)
		}
	}

	updated, err := s.source.UpdateStatus(ctx, order.ID, newStatus)
	if err != nil {
		return nil, fmt.Errorf("обновление заказа %d на стороне источника: %w", order.ID, err)
	}

	if newStatus == domain.StatusCompleted && s.pruner != nil {
		if pruneErr := s.pruner.PruneCompleted(ctx, order.ID); pruneErr != nil {
			s.log.Warnf(ctx, "очистка чек-листа заказа %d: %v", order.ID, pruneErr)
		}
	}

	if pollErr := s.trigger.PollNow(ctx); pollErr != nil {
		// Переход уже состоялся; расхождение доски закроет плановый тик.
		s.log.Warnf(ctx, "внеплановый опрос после перехода заказа %d: %v", order.ID, pollErr)
	}

	s.log.Infof(ctx, "заказ %d переведён в %s", order.ID, updated.Status)
	return updated, nil
}
