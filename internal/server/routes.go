// Package server assembles the route table and the HTTP server.
package server

import (
	"net/http"

	authhandler "finboard/internal/auth/handler"
	expensehandler "finboard/internal/expense/handler"
	healthhandler "finboard/internal/health/handler"
	"finboard/internal/httpapi/router"
	reporthandler "finboard/internal/report/handler"
)

// Permissions enforced by the route table.
const (
	PermExpensesView   = "expenses.view"
	PermExpensesManage = "expenses.manage"
	PermReportsView    = "reports.view"
)

// Deps holds the handlers wired into the route table.
type Deps struct {
	Auth    *authhandler.Handler
	Expense *expensehandler.Handler
	Report  *reporthandler.Handler
	Health  *healthhandler.Handler
}

// BuildRoutes registers every endpoint and freezes the table. Registration
// order matters only between overlapping patterns; the expense id routes sit
// after the collection routes by convention.
//
// Path → handler mapping:
//   - /api/v1/auth/*      → internal/auth/handler
//   - /api/v1/expenses*   → internal/expense/handler
//   - /api/v1/reports/*   → internal/report/handler
//   - /api/v1/health      → internal/health/handler
func BuildRoutes(deps Deps) (*router.Router, error) {
	rt := router.New()

	pageSchema := router.ParamSchema{
		"limit":    {Kind: router.KindInt, Default: "50", Min: 1, Max: 200},
		"offset":   {Kind: router.KindInt, Default: "0"},
		"category": {Kind: router.KindString},
	}
	periodSchema := router.ParamSchema{
		"period_days": {Kind: router.KindInt, Default: "30", Min: 1, Max: 365},
	}

	routes := []router.Route{
		{Pattern: `/api/v1/auth/login`, Methods: []string{http.MethodPost}, Handler: deps.Auth.Login},
		{Pattern: `/api/v1/auth/logout`, Methods: []string{http.MethodPost}, Handler: deps.Auth.Logout},
		{Pattern: `/api/v1/auth/me`, Methods: []string{http.MethodGet}, Handler: deps.Auth.Me, RequireAuth: true},

		{Pattern: `/api/v1/expenses`, Methods: []string{http.MethodGet}, Handler: deps.Expense.List,
			Permission: PermExpensesView, Schema: pageSchema},
		{Pattern: `/api/v1/expenses`, Methods: []string{http.MethodPost}, Handler: deps.Expense.Create,
			Permission: PermExpensesManage},
		{Pattern: `/api/v1/expenses/(?P<id>\d+)`, Methods: []string{http.MethodGet}, Handler: deps.Expense.Get,
			Permission: PermExpensesView, Schema: router.ParamSchema{"id": {Kind: router.KindInt}}},
		{Pattern: `/api/v1/expenses/(?P<id>\d+)`, Methods: []string{http.MethodPut}, Handler: deps.Expense.Update,
			Permission: PermExpensesManage, Schema: router.ParamSchema{"id": {Kind: router.KindInt}}},
		{Pattern: `/api/v1/expenses/(?P<id>\d+)`, Methods: []string{http.MethodDelete}, Handler: deps.Expense.Delete,
			Permission: PermExpensesManage, Schema: router.ParamSchema{"id": {Kind: router.KindInt}}},

		{Pattern: `/api/v1/reports/revenue-trend`, Methods: []string{http.MethodGet}, Handler: deps.Report.RevenueTrend,
			Permission: PermReportsView, Schema: periodSchema},
		{Pattern: `/api/v1/reports/category-performance`, Methods: []string{http.MethodGet}, Handler: deps.Report.CategoryPerformance,
			Permission: PermReportsView, Schema: router.ParamSchema{
				"limit": {Kind: router.KindInt, Default: "10", Min: 1, Max: 100},
			}},
		{Pattern: `/api/v1/reports/cash-flow`, Methods: []string{http.MethodGet}, Handler: deps.Report.CashFlow,
			Permission: PermReportsView, Schema: periodSchema},

		{Pattern: `/api/v1/health`, Methods: []string{http.MethodGet}, Handler: deps.Health.Check},
	}
	for _, route := range routes {
		if err := rt.Register(route); err != nil {
			return nil, err
		}
	}
	rt.Freeze()
	return rt, nil
}
