package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/cartcore-backend/internal/app/model"
	"github.com/ikkim/cartcore-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const stockReportJob = "stock_report"

// LowStockFinder lists products at or under a stock threshold.
type LowStockFinder interface {
	FindLowStock(ctx context.Context, threshold int) ([]model.Product, error)
}

// LowStockGauge exports the size of the last report.
type LowStockGauge interface {
	SetLowStockProducts(n int)
}

// JobTracker records each job run.
type JobTracker interface {
	Track(job string, elapsed time.Duration, err error)
}

// StockReportScheduler 재고 부족 상품 리포트 스케줄러
type StockReportScheduler struct {
	cron      *cron.Cron
	spec      string
	threshold int
	products  LowStockFinder
	gauge     LowStockGauge
	jobs      JobTracker
	timeout   time.Duration
}

// NewStockReportScheduler 재고 리포트 스케줄러 생성
func NewStockReportScheduler(spec string, threshold int, products LowStockFinder, gauge LowStockGauge, jobs JobTracker) *StockReportScheduler {
	return &StockReportScheduler{
		cron:      cron.New(),
		spec:      spec,
		threshold: threshold,
		products:  products,
		gauge:     gauge,
		jobs:      jobs,
		timeout:   time.Minute,
	}
}

// Start 스케줄러 시작
func (s *StockReportScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	})
	if err != nil {
		logger.Error("Failed to add cron job for stock report", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Stock report scheduler started successfully", map[string]interface{}{
		"spec":      s.spec,
		"threshold": s.threshold,
	})
	return nil
}

// RunOnce 재고 리포트를 한 번 실행하고 부족 상품 목록을 반환
func (s *StockReportScheduler) RunOnce(ctx context.Context) ([]model.Product, error) {
	start := time.Now()
	logger.Info("Starting scheduled stock report", map[string]interface{}{
		"threshold": s.threshold,
	})

	products, err := s.products.FindLowStock(ctx, s.threshold)
	if s.jobs != nil {
		s.jobs.Track(stockReportJob, time.Since(start), err)
	}
	if err != nil {
		logger.Error("Failed to build stock report", err, map[string]interface{}{
			"threshold": s.threshold,
		})
		return nil, err
	}

	if s.gauge != nil {
		s.gauge.SetLowStockProducts(len(products))
	}

	for _, p := range products {
		logger.Warn("Product stock is low", map[string]interface{}{
			"product_id": p.ID,
			"name":       p.Name,
			"stock":      p.Stock,
			"sales":      p.Sales,
		})
	}

	logger.Info("Stock report completed", map[string]interface{}{
		"low_stock_count": len(products),
		"elapsed":         time.Since(start).String(),
	})
	return products, nil
}

// Stop 스케줄러 중지. 실행 중인 작업이 끝날 때까지 기다린다
func (s *StockReportScheduler) Stop() {
	logger.Info("Stopping stock report scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Stock report scheduler stopped", nil)
}
