package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type SaleMetrics struct {
	purchasesCompleted  prometheus.Counter
	purchasesRejected   *prometheus.CounterVec
	tokensMinted        prometheus.Counter
	collectionsDeployed prometheus.Counter
}

var (
	saleOnce     sync.Once
	saleRegistry *SaleMetrics
)

func Sale() *SaleMetrics {
	saleOnce.Do(func() {
		saleRegistry = &SaleMetrics{
			purchasesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "sale_purchases_completed_total",
				Help: "Count of successfully applied purchase messages.",
			}),
			purchasesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "sale_purchases_rejected_total",
				Help: "Count of rejected purchase messages by failure reason.",
			}, []string{"reason"}),
			tokensMinted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "sale_tokens_minted_total",
				Help: "Count of tokens minted through purchases.",
			}),
			collectionsDeployed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "sale_collections_deployed_total",
				Help: "Count of collections deployed through the registry.",
			}),
		}
		prometheus.MustRegister(
			saleRegistry.purchasesCompleted,
			saleRegistry.purchasesRejected,
			saleRegistry.tokensMinted,
			saleRegistry.collectionsDeployed,
		)
	})
	return saleRegistry
}

func (m *SaleMetrics) ObservePurchase(count uint64) {
	if m == nil {
		return
	}
	m.purchasesCompleted.Inc()
	m.tokensMinted.Add(float64(count))
}

func (m *SaleMetrics) ObserveRejectedPurchase(reason string) {
	if m == nil {
		return
	}
	m.purchasesRejected.WithLabelValues(reason).Inc()
}

func (m *SaleMetrics) ObserveDeployment() {
	if m == nil {
		return
	}
	m.collectionsDeployed.Inc()
}
