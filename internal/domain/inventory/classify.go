package inventory

import "context"

// Classification partitions the ledger for stock alerting.
// Stale lists product IDs that still have a record but are no longer in the catalog.
type Classification struct {
	OutOfStock []Record `json:"out_of_stock"`
	LowStock   []Record `json:"low_stock"`
	Normal     []Record `json:"normal"`
	Stale      []string `json:"stale,omitempty"`
}

// Classify recomputes the partition on every call
func (l *Ledger) Classify(ctx context.Context) (*Classification, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	live, err := l.liveIDs(ctx)
	if err != nil {
		return nil, err
	}

	c := &Classification{
		OutOfStock: []Record{},
		LowStock:   []Record{},
		Normal:     []Record{},
	}
	for _, rec := range l.records {
		if _, ok := live[rec.ProductID]; !ok {
			c.Stale = append(c.Stale, rec.ProductID)
			continue
		}
		switch rec.Level() {
		case LevelOutOfStock:
			c.OutOfStock = append(c.OutOfStock, rec)
		case LevelLowStock:
			c.LowStock = append(c.LowStock, rec)
		default:
			c.Normal = append(c.Normal, rec)
		}
	}
	return c, nil
}
