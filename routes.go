package main

import (
	"net/http"

	"apotek/auth"
	"apotek/barcode"
	"apotek/catalog"
	"apotek/config"
	"apotek/finance"
	"apotek/logger"
	"apotek/metrics"
	"apotek/opname"
	"apotek/order"
	"apotek/pricing"
	"apotek/receiving"
	"apotek/returns"
	"apotek/supplier"
	"apotek/units"

	"go.uber.org/zap"
)

// services bundles everything the routes need.
type services struct {
	Store     *catalog.Store
	Suppliers *supplier.Service
	Orders    *order.Service
	Receiving *receiving.Service
	Opname    *opname.Manager
	Returns   *returns.Service
	Finance   *finance.Service
	Auth      *auth.Service
	Metrics   *metrics.Metrics
}

func pageSize() int {
	return config.GetConfig().Inventory.PageSize
}

func lowStockThreshold() int {
	return config.GetConfig().Inventory.LowStockThreshold
}

func SetupRoutes(mux *http.ServeMux, s services) {
	mux.HandleFunc("GET /api/config", GetConfigHandler())
	mux.HandleFunc("POST /api/config", SaveConfigHandler())
	mux.HandleFunc("GET /api/units", units.GetOptionsHandler())
	mux.HandleFunc("GET /api/pricing/preview", pricing.PreviewHandler())
	mux.HandleFunc("GET /api/barcode/{code}", barcode.ParseHandler())

	mux.HandleFunc("POST /api/auth/signup", auth.SignUpHandler(s.Auth))
	mux.HandleFunc("POST /api/auth/signin", auth.SignInHandler(s.Auth))
	mux.HandleFunc("POST /api/auth/signout", auth.SignOutHandler(s.Auth))
	mux.HandleFunc("GET /api/auth/session", auth.SessionHandler(s.Auth))
	mux.HandleFunc("GET /api/auth/events", auth.EventsHandler(s.Auth))

	mux.HandleFunc("GET /api/medicines", catalog.ListMedicinesHandler(s.Store, pageSize))
	mux.HandleFunc("POST /api/medicines", catalog.RegisterMedicineHandler(s.Store))
	mux.HandleFunc("GET /api/medicines/{id}", catalog.GetMedicineHandler(s.Store))
	mux.HandleFunc("GET /api/medicines/by_barcode/{code}", catalog.GetMedicineByBarcodeHandler(s.Store))
	mux.HandleFunc("POST /api/medicines/import", catalog.ImportMedicinesHandler(s.Store))
	mux.HandleFunc("GET /api/invoices", catalog.ListInvoicesHandler(s.Store))

	mux.HandleFunc("GET /api/suppliers", supplier.ListSuppliersHandler(s.Suppliers))
	mux.HandleFunc("POST /api/suppliers", supplier.CreateSupplierHandler(s.Suppliers))

	mux.HandleFunc("GET /api/orders", order.ListOrdersHandler(s.Orders))
	mux.HandleFunc("POST /api/orders", order.SubmitOrderHandler(s.Orders, s.Store))
	mux.HandleFunc("GET /api/orders/suggestions", order.SuggestionsHandler(s.Orders))
	mux.HandleFunc("GET /api/orders/{id}", order.GetOrderHandler(s.Orders))
	mux.HandleFunc("POST /api/orders/{id}/paid", order.SetPaidHandler(s.Orders))
	mux.HandleFunc("GET /api/orders/{id}/document", order.DocumentHandler(s.Orders))
	mux.HandleFunc("GET /api/orders/{id}/pdf", order.PDFHandler(s.Orders))

	mux.HandleFunc("GET /api/receiving/draft", receiving.DraftHandler(s.Receiving))
	mux.HandleFunc("POST /api/receiving/finalize", receiving.FinalizeHandler(s.Receiving))

	mux.HandleFunc("POST /api/opname/sessions", opname.OpenSessionHandler(s.Opname))
	mux.HandleFunc("GET /api/opname/sessions/{id}", opname.GetSessionHandler(s.Opname))
	mux.HandleFunc("POST /api/opname/sessions/{id}/count", opname.CountHandler(s.Opname))
	mux.HandleFunc("DELETE /api/opname/sessions/{id}", opname.CloseSessionHandler(s.Opname))

	mux.HandleFunc("GET /api/returns", returns.ListReturnsHandler(s.Returns))
	mux.HandleFunc("POST /api/returns", returns.RecordReturnHandler(s.Returns))

	mux.HandleFunc("GET /api/finance/summary", finance.SummaryHandler(s.Finance))
	mux.HandleFunc("GET /api/dashboard", finance.DashboardHandler(s.Finance))

	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
}

// Handler wraps mux with the request logger, route metrics and the session
// guard. Metrics are labelled by route pattern, not raw path.
func Handler(mux *http.ServeMux, s services, log *zap.Logger) http.Handler {
	var h http.Handler = auth.Middleware(s.Auth, mux)
	if s.Metrics != nil {
		h = s.Metrics.Middleware(func(r *http.Request) string {
			if _, pattern := mux.Handler(r); pattern != "" {
				return pattern
			}
			return "unmatched"
		}, h)
	}
	return logger.Middleware(log, h)
}
