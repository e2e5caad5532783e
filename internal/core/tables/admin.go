package tables

import "github.com/JonMunkholm/ibportal/internal/core"

func init() {
	registerAccounts()
	registerWithdrawals()
	registerKYCApplications()
}

func registerAccounts() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:     "accounts",
			Group:   "Admin",
			Label:   "Trading Accounts",
			Title:   "accounts",
			Dataset: "admin/accounts",
		},
		Columns: []core.Column{
			{Key: "login", Label: "Login"},
			{Key: "name", Label: "Holder"},
			{Key: "group", Label: "Group"},
			{Key: "leverage", Label: "Leverage", Unsortable: true},
			{Key: "balance", Label: "Balance", Type: core.FieldNumeric, Render: money("currency")},
			{Key: "equity", Label: "Equity", Type: core.FieldNumeric, Render: money("currency")},
			{Key: "ib_code", Label: "IB"},
			{Key: "status", Label: "Status", Type: core.FieldEnum, Render: statusBadge},
		},
		Filters: core.FilterConfig{
			Selects: []core.SelectFilter{
				{Key: "group", Label: "Group", Options: []string{"Standard", "ECN", "Pro"}},
				{Key: "status", Label: "Status", Options: []string{"Active", "Suspended"}},
			},
		},
		PageSize: 25,
	})
}

func registerWithdrawals() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:     "withdrawals",
			Group:   "Admin",
			Label:   "Withdrawals",
			Title:   "withdrawals",
			Dataset: "admin/withdrawals",
		},
		Columns: []core.Column{
			{Key: "requested_at", Label: "Requested", Type: core.FieldDate, Render: dateOnly},
			{Key: "client_name", Label: "Client"},
			{Key: "method", Label: "Method"},
			{Key: "amount", Label: "Amount", Type: core.FieldNumeric, Render: money("currency")},
			{Key: "fee_pct", Label: "Fee", Type: core.FieldNumeric, Render: percent},
			{Key: "status", Label: "Status", Type: core.FieldEnum, Render: statusBadge},
		},
		Filters: core.FilterConfig{
			SearchKeys: []string{"client_name", "method"},
			Selects: []core.SelectFilter{
				{Key: "method", Label: "Method", Options: []string{"Bank Wire", "Card", "Crypto"}},
				{Key: "status", Label: "Status", Options: []string{"Completed", "Pending", "Failed"}},
			},
			DateKey: "requested_at",
		},
		PageSize:    10,
		IndexColumn: true,
	})
}

func registerKYCApplications() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:     "kyc_applications",
			Group:   "Compliance",
			Label:   "KYC Applications",
			Title:   "kyc-applications",
			Dataset: "admin/kyc",
		},
		Columns: []core.Column{
			{Key: "submitted_at", Label: "Submitted", Type: core.FieldDate, Render: dateOnly},
			{Key: "name", Label: "Applicant"},
			{Key: "email", Label: "Email", Render: emailLink},
			{Key: "country", Label: "Country"},
			{Key: "document_type", Label: "Document"},
			{Key: "review_status", Label: "Status", Type: core.FieldEnum, Render: statusBadge},
		},
		Filters: core.FilterConfig{
			SearchKeys: []string{"name", "email", "country"},
			Selects: []core.SelectFilter{
				{Key: "review_status", Label: "Status", Options: []string{"Approved", "Pending", "Review", "Rejected"}},
				{Key: "document_type", Label: "Document", Options: []string{"Passport", "ID Card", "Driving Licence"}},
			},
			DateKey: "submitted_at",
		},
		PageSize:          10,
		IndexColumn:       true,
		SearchPlaceholder: "Search applicants",
	})
}
