package catalog

import "context"

// StockItemRepository defines persistence for imported stock items
type StockItemRepository interface {
	// InsertIfAbsent inserts the item unless its item_code already exists.
	// It reports true when a new row was written.
	InsertIfAbsent(ctx context.Context, item NormalizedStockItem) (bool, error)

	// ExistsByCode checks whether an item with the code is stored
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Count returns the number of stored stock items
	Count(ctx context.Context) (int64, error)
}
