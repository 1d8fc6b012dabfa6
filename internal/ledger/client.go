// Package ledger models raw financial entries and the upstream REST API
// (the legacy back-office) they are fetched from.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultClientTimeout = 10 * time.Second

// UpstreamError wraps a failed call to the ledger API. The core never
// synthesises partial results from a failed fetch; this error propagates
// to the caller as-is.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ledger: upstream %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("ledger: upstream %s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Query carries the filters forwarded to the upstream list endpoints.
// Optional filters are nil when absent, never empty-string sentinels.
type Query struct {
	CompanyID     int64 // 0 means all companies (movements only)
	Period        Period
	CostCenterID  *int64
	BankAccountID *int64
}

// Fetcher is the boundary consumed by the report services. Implemented by
// Client against the real API and by in-memory fakes in tests.
type Fetcher interface {
	Payables(ctx context.Context, q Query) ([]LedgerLine, error)
	Receivables(ctx context.Context, q Query) ([]LedgerLine, error)
	Movements(ctx context.Context, q Query) ([]LedgerLine, error)
	ChartOfAccounts(ctx context.Context, companyID int64) ([]ChartAccount, error)
}

// Client talks to the legacy financeiro REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a Client. baseURL is the API root without trailing slash.
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("ledger: base url required")
	}
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// lineDTO mirrors the wire shape shared by the three entry endpoints.
// Field names follow the legacy API (pt-BR).
type lineDTO struct {
	ID             int64           `json:"id"`
	EmpresaID      int64           `json:"empresaId"`
	PlanoContaID   int64           `json:"planoContaId"`
	CentroCustoID  *int64          `json:"centroCustoId"`
	ContaBancaria  *int64          `json:"contaBancariaId"`
	Descricao      string          `json:"descricao"`
	Valor          decimal.Decimal `json:"valor"`
	Data           string          `json:"data"`
	Status         string          `json:"status"`
	Realizado      bool            `json:"realizado"`
}

type accountDTO struct {
	ID              int64  `json:"id"`
	Codigo          string `json:"codigo"`
	Descricao       string `json:"descricao"`
	Tipo            string `json:"tipo"`
	Nivel           int    `json:"nivel"`
	PlanoContaPaiID *int64 `json:"planoContaPaiId"`
	Analitica       bool   `json:"analitica"`
	Ativo           bool   `json:"ativo"`
}

// Payables lists accounts-payable entries for the query. Amounts arrive
// positive from the endpoint and are negated here: payables are outflows.
func (c *Client) Payables(ctx context.Context, q Query) ([]LedgerLine, error) {
	lines, err := c.fetchLines(ctx, "/contas-pagar", q)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].Amount = lines[i].Amount.Neg()
	}
	return lines, nil
}

// Receivables lists accounts-receivable entries for the query.
func (c *Client) Receivables(ctx context.Context, q Query) ([]LedgerLine, error) {
	return c.fetchLines(ctx, "/contas-receber", q)
}

// Movements lists bank movements for the query. Movement amounts are
// already signed on the wire.
func (c *Client) Movements(ctx context.Context, q Query) ([]LedgerLine, error) {
	return c.fetchLines(ctx, "/movimentacoes", q)
}

// ChartOfAccounts returns the full account tree of a company.
func (c *Client) ChartOfAccounts(ctx context.Context, companyID int64) ([]ChartAccount, error) {
	endpoint := "/plano-contas"
	params := url.Values{}
	if companyID > 0 {
		params.Set("empresaId", strconv.FormatInt(companyID, 10))
	}
	var dtos []accountDTO
	if err := c.getJSON(ctx, endpoint, params, &dtos); err != nil {
		return nil, err
	}
	accounts := make([]ChartAccount, 0, len(dtos))
	for _, dto := range dtos {
		accType, err := ParseAccountType(dto.Tipo)
		if err != nil {
			return nil, &UpstreamError{Endpoint: endpoint, Err: err}
		}
		accounts = append(accounts, ChartAccount{
			ID:            dto.ID,
			Code:          dto.Codigo,
			Description:   dto.Descricao,
			Type:          accType,
			Level:         dto.Nivel,
			ParentID:      dto.PlanoContaPaiID,
			AllowsPosting: dto.Analitica,
			Active:        dto.Ativo,
		})
	}
	return accounts, nil
}

func (c *Client) fetchLines(ctx context.Context, endpoint string, q Query) ([]LedgerLine, error) {
	params := url.Values{}
	params.Set("dataInicio", q.Period.Start.Format("2006-01-02"))
	params.Set("dataFim", q.Period.End.Format("2006-01-02"))
	if q.CompanyID > 0 {
		params.Set("empresaId", strconv.FormatInt(q.CompanyID, 10))
	}
	if q.CostCenterID != nil {
		params.Set("centroCustoId", strconv.FormatInt(*q.CostCenterID, 10))
	}
	if q.BankAccountID != nil {
		params.Set("contaBancariaId", strconv.FormatInt(*q.BankAccountID, 10))
	}
	var dtos []lineDTO
	if err := c.getJSON(ctx, endpoint, params, &dtos); err != nil {
		return nil, err
	}
	lines := make([]LedgerLine, 0, len(dtos))
	for _, dto := range dtos {
		line, err := dto.toDomain()
		if err != nil {
			return nil, &UpstreamError{Endpoint: endpoint, Err: err}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (dto lineDTO) toDomain() (LedgerLine, error) {
	status, err := ParseLineStatus(dto.Status)
	if err != nil {
		return LedgerLine{}, err
	}
	date, err := time.Parse("2006-01-02", dto.Data)
	if err != nil {
		return LedgerLine{}, fmt.Errorf("ledger: invalid date %q: %w", dto.Data, err)
	}
	return LedgerLine{
		ID:            dto.ID,
		CompanyID:     dto.EmpresaID,
		AccountID:     dto.PlanoContaID,
		CostCenterID:  dto.CentroCustoID,
		BankAccountID: dto.ContaBancaria,
		Description:   dto.Descricao,
		Amount:        dto.Valor,
		Date:          date,
		Status:        status,
		Realized:      dto.Realizado,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, target any) error {
	u := c.baseURL + endpoint
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("decode payload: %w", err)}
	}
	return nil
}
