package lendenpay

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Account types as the upstream reports them.
const (
	AccountTypeSuperAdmin = "super admin"
	AccountTypeAgent      = "agent"
	AccountTypeDefault    = "default"
)

// Transaction statuses as the upstream reports them.
const (
	TxStatusPending  = "PENDING"
	TxStatusApproved = "APPROVED"
	TxStatusRejected = "REJECTED"
	TxStatusSettled  = "SETTLED"
)

// Transaction kinds.
const (
	TxTypeDeposit  = "deposit"
	TxTypeWithdraw = "withdraw"
)

// Record statuses for payment methods, types and accounts.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is an upstream user account
type User struct {
	ID             string          `json:"id"`
	FullName       string          `json:"fullName"`
	Email          string          `json:"email"`
	PhoneNumber    string          `json:"phoneNumber"`
	AccountType    string          `json:"accountType"`
	AccountStatus  string          `json:"accountStatus"`
	AgentID        string          `json:"agentId,omitempty"`
	Commission     decimal.Decimal `json:"commission"`
	CommissionType string          `json:"commissionType,omitempty"`
}

// IsAgent reports whether the user can receive payments through the public portal.
func (u *User) IsAgent() bool {
	return u.AccountType == AccountTypeAgent && u.AgentID != ""
}

// PaymentMethod is a top-level payment channel (mobile banking, bank, USDT, ...)
type PaymentMethod struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image,omitempty"`
	Status string `json:"status"`
}

// PaymentType is a named configuration under a payment method
type PaymentType struct {
	ID              string              `json:"id"`
	PaymentMethodID string              `json:"paymentMethodId"`
	Name            string              `json:"name"`
	Image           string              `json:"image,omitempty"`
	Status          string              `json:"status"`
	PaymentDetails  []PaymentTypeDetail `json:"PaymentDetails,omitempty"`
}

// PaymentTypeDetail is a specific option/tier under a payment type
type PaymentTypeDetail struct {
	ID           string          `json:"id"`
	Value        string          `json:"value"`
	Description  string          `json:"description,omitempty"`
	MaxLimit     decimal.Decimal `json:"maxLimit"`
	CurrentUsage decimal.Decimal `json:"currentUsage"`
	IsActive     bool            `json:"isActive"`
}

// PaymentAccount is a linked account for a payment detail
type PaymentAccount struct {
	ID              string          `json:"id"`
	PaymentDetailID string          `json:"paymentDetailId"`
	AccountNumber   string          `json:"accountNumber"`
	BranchName      string          `json:"branchName,omitempty"`
	RoutingNumber   string          `json:"routingNumber,omitempty"`
	MaxLimit        decimal.Decimal `json:"maxLimit"`
	CurrentUsage    decimal.Decimal `json:"currentUsage"`
	Status          string          `json:"status"`
}

// Transaction is an upstream deposit/withdraw record. The linked records are
// populated by the upstream listing endpoint; the portal never joins them.
type Transaction struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Commission     decimal.Decimal `json:"commission"`
	Attachment     string          `json:"attachment,omitempty"`
	Remarks        string          `json:"remarks,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	User           *User           `json:"User,omitempty"`
	PaymentMethod  *PaymentMethod  `json:"PaymentMethod,omitempty"`
	PaymentType    *PaymentType    `json:"PaymentType,omitempty"`
	PaymentAccount *PaymentAccount `json:"PaymentAccount,omitempty"`
}

// TransactionFilters narrows a transaction listing
type TransactionFilters struct {
	From   *time.Time
	To     *time.Time
	Status string
	Search string
	Page   int
	Limit  int
}

// Values encodes the filters as upstream query parameters
func (f TransactionFilters) Values() url.Values {
	params := url.Values{}
	if f.From != nil {
		params.Set("startDate", f.From.UTC().Format("2006-01-02"))
	}
	if f.To != nil {
		params.Set("endDate", f.To.UTC().Format("2006-01-02"))
	}
	if f.Status != "" {
		params.Set("status", f.Status)
	}
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	if f.Page > 0 {
		params.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	return params
}

// TransactionList is a paginated transaction listing
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
}

// UserFilters narrows a user listing
type UserFilters struct {
	Search string
	Page   int
	Limit  int
}

// Values encodes the filters as upstream query parameters
func (f UserFilters) Values() url.Values {
	params := url.Values{}
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	if f.Page > 0 {
		params.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	return params
}

// UserList is a paginated user listing
type UserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// AgentInfo is the public profile shown on the agent portal
type AgentInfo struct {
	AgentID  string `json:"agentId"`
	FullName string `json:"fullName"`
	Image    string `json:"image,omitempty"`
	Status   string `json:"status"`
}
