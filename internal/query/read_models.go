package query

// Re-export read models from readmodel package
import "github.com/example/retail-backoffice/internal/readmodel"

type ProductStockReadModel = readmodel.ProductStockReadModel
type StockAlertsReadModel = readmodel.StockAlertsReadModel
type StatusTotalReadModel = readmodel.StatusTotalReadModel
type ProductRevenueReadModel = readmodel.ProductRevenueReadModel
type OrderStatsReadModel = readmodel.OrderStatsReadModel
