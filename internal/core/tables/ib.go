package tables

import "github.com/JonMunkholm/ibportal/internal/core"

func init() {
	registerIBCommissions()
	registerIBClients()
}

func registerIBCommissions() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:     "ib_commissions",
			Group:   "IB",
			Label:   "Commissions",
			Title:   "commission-report",
			Dataset: "ib/commissions",
		},
		Columns: []core.Column{
			{Key: "trade_date", Label: "Date", Type: core.FieldDate, Render: dateOnly},
			{Key: "client_name", Label: "Client"},
			{Key: "account", Label: "Account"},
			{Key: "symbol", Label: "Symbol"},
			{Key: "lots", Label: "Lots", Type: core.FieldNumeric},
			{Key: "rate", Label: "Rate / Lot", Type: core.FieldNumeric, Render: money("currency")},
			{Key: "commission", Label: "Commission", Type: core.FieldNumeric, Render: money("currency")},
			{Key: "status", Label: "Status", Type: core.FieldEnum, Render: statusBadge},
		},
		Filters: core.FilterConfig{
			SearchKeys: []string{"client_name", "account", "symbol"},
			Selects: []core.SelectFilter{
				{Key: "status", Label: "Status", Options: []string{"Paid", "Pending", "Rejected"}},
				{Key: "symbol", Label: "Symbol", Options: []string{"EURUSD", "GBPUSD", "USDJPY", "XAUUSD"}},
			},
			DateKey: "trade_date",
		},
		PageSize:          25,
		IndexColumn:       true,
		SearchPlaceholder: "Search client, account or symbol",
	})
}

func registerIBClients() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:     "ib_clients",
			Group:   "IB",
			Label:   "Referred Clients",
			Title:   "referred-clients",
			Dataset: "ib/clients",
		},
		Columns: []core.Column{
			{Key: "name", Label: "Name"},
			{Key: "email", Label: "Email", Render: emailLink},
			{Key: "country", Label: "Country"},
			{Key: "registered_at", Label: "Registered", Type: core.FieldDate, Render: dateOnly},
			{Key: "deposits", Label: "Deposits", Type: core.FieldNumeric, Render: money("currency")},
			{Key: "kyc_status", Label: "KYC", Type: core.FieldEnum, Render: statusBadge},
		},
		Filters: core.FilterConfig{
			Selects: []core.SelectFilter{
				{Key: "kyc_status", Label: "KYC", Options: []string{"Approved", "Pending", "Rejected"}},
			},
			DateKey: "registered_at",
		},
		PageSize:    10,
		IndexColumn: true,
	})
}
