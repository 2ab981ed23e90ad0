package inventory

import (
	"context"

	"github.com/example/retail-backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconcileReport lists what a reconciliation pass changed
type ReconcileReport struct {
	Removed []string `json:"removed"`
	Created []string `json:"created"`
	Renamed []string `json:"renamed"`
}

// Changed reports whether the pass modified the ledger
func (r *ReconcileReport) Changed() bool {
	return len(r.Removed)+len(r.Created)+len(r.Renamed) > 0
}

// Sync reconciles against the catalog's current product list
func (l *Ledger) Sync(ctx context.Context) (*ReconcileReport, error) {
	products, err := l.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return l.Reconcile(ctx, products)
}

// Reconcile converges the ledger to exactly one record per given product: records of
// absent products are removed, missing records are created empty, and product names
// are refreshed. Calling it again with the same products changes nothing.
func (l *Ledger) Reconcile(ctx context.Context, products []catalog.Product) (*ReconcileReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	live := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		live[p.ID] = p
	}

	report := &ReconcileReport{
		Removed: []string{},
		Created: []string{},
		Renamed: []string{},
	}
	next := make([]Record, 0, len(products))
	have := make(map[string]struct{}, len(l.records))
	for _, rec := range l.records {
		p, ok := live[rec.ProductID]
		if !ok {
			report.Removed = append(report.Removed, rec.ProductID)
			continue
		}
		if rec.ProductName != p.Name {
			rec.ProductName = p.Name
			report.Renamed = append(report.Renamed, rec.ProductID)
		}
		have[rec.ProductID] = struct{}{}
		next = append(next, rec)
	}

	now := l.now()
	for _, p := range products {
		if _, ok := have[p.ID]; ok {
			continue
		}
		next = append(next, newRecord(uuid.New().String(), p.ID, p.Name, now))
		have[p.ID] = struct{}{}
		report.Created = append(report.Created, p.ID)
	}

	if !report.Changed() {
		return report, nil
	}
	if err := l.commit(ctx, next); err != nil {
		return nil, err
	}

	l.logger.Info("inventory reconciled",
		zap.Int("removed", len(report.Removed)),
		zap.Int("created", len(report.Created)),
		zap.Int("renamed", len(report.Renamed)),
	)
	for _, id := range report.Removed {
		l.publish(ctx, id, EventRecordDeleted, RecordDeleted{ProductID: id, DeletedAt: now})
	}
	for _, id := range report.Created {
		l.publish(ctx, id, EventRecordCreated, RecordCreated{
			ProductID:   id,
			ProductName: live[id].Name,
			CreatedAt:   now,
		})
	}
	return report, nil
}
