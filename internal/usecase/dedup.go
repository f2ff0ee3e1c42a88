package usecase

import "multifeed/internal/domain"

// DedupGate отсекает записи, уже выданные в предыдущих запусках.
type DedupGate struct {
	seen map[string]struct{}
}

// NewDedupGate создает фильтр поверх загруженного набора идентификаторов.
// Переданный набор не изменяется.
func NewDedupGate(seen map[string]struct{}) *DedupGate {
	return &DedupGate{seen: seen}
}

// Filter возвращает записи с ранее не встречавшимися ID и список ID для сохранения.
// Внутри одного запуска выигрывает первая запись с данным ID.
func (g *DedupGate) Filter(items []domain.FeedItem) ([]domain.FeedItem, []string) {
	inRun := make(map[string]struct{}, len(items))
	fresh := make([]domain.FeedItem, 0, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := g.seen[item.ID]; ok {
			continue
		}
		if _, ok := inRun[item.ID]; ok {
			continue
		}
		inRun[item.ID] = struct{}{}
		fresh = append(fresh, item)
		ids = append(ids, item.ID)
	}
	return fresh, ids
}
